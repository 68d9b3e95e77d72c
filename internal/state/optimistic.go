package state

import (
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
	"github.com/google/uuid"
)

type insertKind int

const (
	insertProject insertKind = iota + 1
	insertTask
	insertMember
)

// pendingInsert tracks an entity inserted under a temporary id before the server
// confirmed it.
type pendingInsert struct {
	kind      insertKind
	projectID models.ID
}

// TempIDPrefix marks ids minted locally for optimistic inserts.
const TempIDPrefix = "tmp-"

// NewTempID returns a fresh temporary id for an optimistic insert.
func NewTempID() models.ID {
	return models.ID(TempIDPrefix + uuid.NewString())
}

// Pending returns the temporary ids that are neither committed nor rolled back.
func (s *Store) Pending() []models.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ID, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, id)
	}
	return out
}

// BeginProjectInsert prepends p under tempID until the server confirms it.
func (s *Store) BeginProjectInsert(tempID models.ID, p models.Project) {
	s.apply(OpBeginInsert, tempID, "", func() bool {
		p = p.Clone()
		p.ID = tempID
		s.projects = append([]models.Project{p}, s.projects...)
		s.pending[tempID] = pendingInsert{kind: insertProject}
		return true
	})
}

// CommitProjectInsert swaps the temporary project for the server's version, in place.
// If a wholesale replace dropped the temporary project in the meantime, the server's
// project is upserted instead.
func (s *Store) CommitProjectInsert(tempID models.ID, server models.Project) {
	s.apply(OpCommitInsert, server.ID, "", func() bool {
		if !s.takePending(tempID, insertProject) {
			return false
		}
		if pi := s.projectIndex(tempID); pi >= 0 {
			s.projects[pi] = server.Clone()
			return true
		}
		if !s.replaceProject(server) {
			s.projects = append([]models.Project{server.Clone()}, s.projects...)
		}
		return true
	})
}

// RollbackProjectInsert removes the temporary project.
func (s *Store) RollbackProjectInsert(tempID models.ID) {
	s.apply(OpRollbackInsert, tempID, "", func() bool {
		if !s.takePending(tempID, insertProject) {
			return false
		}
		pi := s.projectIndex(tempID)
		if pi < 0 {
			return false
		}
		s.projects = append(s.projects[:pi:pi], s.projects[pi+1:]...)
		return true
	})
}

// BeginTaskInsert prepends task under tempID into the project. Nothing is recorded
// when the project is missing.
func (s *Store) BeginTaskInsert(projectID, tempID models.ID, task models.Task) {
	s.apply(OpBeginInsert, projectID, tempID, func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		task = task.Clone()
		task.ID = tempID
		p := &s.projects[pi]
		p.Tasks = append([]models.Task{task}, p.Tasks...)
		s.pending[tempID] = pendingInsert{kind: insertTask, projectID: projectID}
		return true
	})
}

// CommitTaskInsert swaps the temporary task for the server's version. If the
// temporary task is gone but its project is still present, the server's task is
// upserted into that project.
func (s *Store) CommitTaskInsert(tempID models.ID, server models.Task) {
	s.apply(OpCommitInsert, "", server.ID, func() bool {
		projectID, ok := s.pendingProject(tempID, insertTask)
		if !ok {
			return false
		}
		delete(s.pending, tempID)
		pi, ti := s.taskIndex(projectID, tempID)
		if pi < 0 {
			return false
		}
		if ti < 0 {
			if _, ti = s.taskIndex(projectID, server.ID); ti < 0 {
				p := &s.projects[pi]
				p.Tasks = append([]models.Task{server.Clone()}, p.Tasks...)
				return true
			}
		}
		s.projects[pi].Tasks[ti] = server.Clone()
		return true
	})
}

// RollbackTaskInsert removes the temporary task.
func (s *Store) RollbackTaskInsert(tempID models.ID) {
	s.apply(OpRollbackInsert, "", tempID, func() bool {
		projectID, ok := s.pendingProject(tempID, insertTask)
		if !ok {
			return false
		}
		delete(s.pending, tempID)
		pi, ti := s.taskIndex(projectID, tempID)
		if ti < 0 {
			return false
		}
		tasks := s.projects[pi].Tasks
		s.projects[pi].Tasks = append(tasks[:ti:ti], tasks[ti+1:]...)
		return true
	})
}

// BeginMemberInsert appends m under tempID to the project's members.
func (s *Store) BeginMemberInsert(projectID, tempID models.ID, m models.Member) {
	s.apply(OpBeginInsert, projectID, "", func() bool {
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		m.ID = tempID
		p := &s.projects[pi]
		p.Members = append(p.Members, m)
		s.pending[tempID] = pendingInsert{kind: insertMember, projectID: projectID}
		return true
	})
}

// CommitMemberInsert swaps the temporary member for the server's version.
func (s *Store) CommitMemberInsert(tempID models.ID, server models.Member) {
	s.apply(OpCommitInsert, "", "", func() bool {
		projectID, ok := s.pendingProject(tempID, insertMember)
		if !ok {
			return false
		}
		delete(s.pending, tempID)
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		for i, m := range s.projects[pi].Members {
			if m.ID == tempID {
				s.projects[pi].Members[i] = server
				return true
			}
		}
		return false
	})
}

// RollbackMemberInsert removes the temporary member.
func (s *Store) RollbackMemberInsert(tempID models.ID) {
	s.apply(OpRollbackInsert, "", "", func() bool {
		projectID, ok := s.pendingProject(tempID, insertMember)
		if !ok {
			return false
		}
		delete(s.pending, tempID)
		pi := s.projectIndex(projectID)
		if pi < 0 {
			return false
		}
		members := s.projects[pi].Members
		for i, m := range members {
			if m.ID == tempID {
				s.projects[pi].Members = append(members[:i:i], members[i+1:]...)
				return true
			}
		}
		return false
	})
}

// takePending removes tempID from the pending set if it has the given kind.
// Caller holds the lock.
func (s *Store) takePending(tempID models.ID, kind insertKind) bool {
	p, ok := s.pending[tempID]
	if !ok || p.kind != kind {
		return false
	}
	delete(s.pending, tempID)
	return true
}

// pendingProject returns the owning project of a pending child insert. Caller holds the lock.
func (s *Store) pendingProject(tempID models.ID, kind insertKind) (models.ID, bool) {
	p, ok := s.pending[tempID]
	if !ok || p.kind != kind {
		return "", false
	}
	return p.projectID, true
}
