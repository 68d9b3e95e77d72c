package state

import (
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// SetProjects replaces the project collection and clears loading and error.
func (s *Store) SetProjects(projects []models.Project) {
	s.apply(OpSetProjects, "", "", func() bool {
		s.projects = models.CloneProjects(projects)
		s.loading = false
		s.err = ""
		return true
	})
}

// AddProject prepends p. The same id may be inserted twice.
func (s *Store) AddProject(p models.Project) {
	s.apply(OpAddProject, p.ID, "", func() bool {
		s.projects = append([]models.Project{p.Clone()}, s.projects...)
		s.loading = false
		return true
	})
}

// UpdateProject replaces the project with p.ID, keeping its position.
func (s *Store) UpdateProject(p models.Project) {
	s.apply(OpUpdateProject, p.ID, "", func() bool {
		s.loading = false
		return s.replaceProject(p)
	})
}

// UpdateSingleProject replaces the first project with p.ID, for a project
// fetched on its own. Later duplicates are left alone. A project not already in
// the collection is dropped; use UpsertProject to insert it.
func (s *Store) UpdateSingleProject(p models.Project) {
	s.apply(OpUpdateSingleProject, p.ID, "", func() bool {
		pi := s.projectIndex(p.ID)
		if pi < 0 {
			return false
		}
		s.projects[pi] = p.Clone()
		return true
	})
}

// UpsertProject replaces the project with p.ID, or prepends p when absent.
func (s *Store) UpsertProject(p models.Project) {
	s.apply(OpUpsertProject, p.ID, "", func() bool {
		if !s.replaceProject(p) {
			s.projects = append([]models.Project{p.Clone()}, s.projects...)
		}
		return true
	})
}

// replaceProject swaps in every project whose id matches. Caller holds the lock.
func (s *Store) replaceProject(p models.Project) bool {
	found := false
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p.Clone()
			found = true
		}
	}
	return found
}

// DeleteProject removes the project with id.
func (s *Store) DeleteProject(id models.ID) {
	s.apply(OpDeleteProject, id, "", func() bool {
		s.loading = false
		kept := s.projects[:0:0]
		for _, p := range s.projects {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		found := len(kept) != len(s.projects)
		s.projects = kept
		return found
	})
}

// AddTask prepends task to the project's task list.
func (s *Store) AddTask(projectID models.ID, task models.Task) {
	s.apply(OpAddTask, projectID, task.ID, func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		p := &s.projects[pi]
		p.Tasks = append([]models.Task{task.Clone()}, p.Tasks...)
		return true
	})
}

// UpdateTask shallow-merges patch onto the task. A miss is logged at error level.
func (s *Store) UpdateTask(projectID, taskID models.ID, patch models.TaskPatch) {
	s.apply(OpUpdateTask, projectID, taskID, func() bool {
		pi, ti := s.taskIndex(projectID, taskID)
		switch {
		case pi < 0 || len(s.projects[pi].Tasks) == 0:
			s.log.Error("state: project not found or has no tasks", "project_id", projectID.String(), "task_id", taskID.String())
			return false
		case ti < 0:
			s.log.Error("state: task not found", "project_id", projectID.String(), "task_id", taskID.String())
			return false
		}
		s.projects[pi].Tasks[ti] = patch.Apply(s.projects[pi].Tasks[ti])
		return true
	})
}

// DeleteTask removes the task from its project.
func (s *Store) DeleteTask(projectID, taskID models.ID) {
	s.apply(OpDeleteTask, projectID, taskID, func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		p := &s.projects[pi]
		kept := p.Tasks[:0:0]
		for _, t := range p.Tasks {
			if t.ID != taskID {
				kept = append(kept, t)
			}
		}
		found := len(kept) != len(p.Tasks)
		if p.Tasks != nil {
			p.Tasks = kept
		}
		return found
	})
}

// AddComment appends a comment to the task.
func (s *Store) AddComment(projectID, taskID models.ID, c models.Comment) {
	s.apply(OpAddComment, projectID, taskID, func() bool {
		pi, ti := s.taskIndex(projectID, taskID)
		if ti < 0 {
			return false
		}
		t := &s.projects[pi].Tasks[ti]
		t.Comments = append(t.Comments, c)
		return true
	})
}

// AddProjectMember appends a member. Duplicate users are allowed.
func (s *Store) AddProjectMember(projectID models.ID, m models.Member) {
	s.apply(OpAddProjectMember, projectID, "", func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		p := &s.projects[pi]
		p.Members = append(p.Members, m)
		return true
	})
}

// RemoveProjectMember removes every member entry referencing userID.
func (s *Store) RemoveProjectMember(projectID, userID models.ID) {
	s.apply(OpRemoveProjectMember, projectID, "", func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		p := &s.projects[pi]
		if p.Members == nil {
			return true
		}
		kept := p.Members[:0:0]
		for _, m := range p.Members {
			if m.User.ID != userID {
				kept = append(kept, m)
			}
		}
		p.Members = kept
		return true
	})
}

// AddAttachment appends an attachment to the task.
func (s *Store) AddAttachment(projectID, taskID models.ID, a models.Attachment) {
	s.apply(OpAddAttachment, projectID, taskID, func() bool {
		pi, ti := s.taskIndex(projectID, taskID)
		if ti < 0 {
			return false
		}
		t := &s.projects[pi].Tasks[ti]
		t.Attachments = append(t.Attachments, a)
		return true
	})
}

// RemoveAttachment removes the attachment with attachmentID from the task.
func (s *Store) RemoveAttachment(projectID, taskID, attachmentID models.ID) {
	s.apply(OpRemoveAttachment, projectID, taskID, func() bool {
		pi, ti := s.taskIndex(projectID, taskID)
		if ti < 0 {
			return false
		}
		t := &s.projects[pi].Tasks[ti]
		kept := t.Attachments[:0:0]
		for _, a := range t.Attachments {
			if a.ID != attachmentID {
				kept = append(kept, a)
			}
		}
		found := len(kept) != len(t.Attachments)
		if t.Attachments != nil {
			t.Attachments = kept
		}
		return found
	})
}
