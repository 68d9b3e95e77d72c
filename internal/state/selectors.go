package state

import (
	"strings"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// Projects returns a copy of the project collection in display order.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneProjects(s.projects)
}

// Project returns the first project with id.
func (s *Store) Project(id models.ID) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pi := s.projectIndex(id); pi >= 0 {
		return s.projects[pi].Clone(), true
	}
	return models.Project{}, false
}

// Task returns a task within a project.
func (s *Store) Task(projectID, taskID models.ID) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pi, ti := s.taskIndex(projectID, taskID)
	if ti < 0 {
		return models.Task{}, false
	}
	return s.projects[pi].Tasks[ti].Clone(), true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// ProjectTask is a task flattened with the project it belongs to.
type ProjectTask struct {
	ProjectID   models.ID   `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Task        models.Task `json:"task"`
}

// TasksAssignedTo lists every task assigned to userID across all projects.
func (s *Store) TasksAssignedTo(userID models.ID) []ProjectTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ProjectTask
	for _, p := range s.projects {
		for _, t := range p.Tasks {
			if t.AssigneeID() == userID && userID != "" {
				out = append(out, ProjectTask{ProjectID: p.ID, ProjectName: p.Name, Task: t.Clone()})
			}
		}
	}
	return out
}

// OverdueTasks lists tasks past their due date that are not completed.
func (s *Store) OverdueTasks(now time.Time) []ProjectTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ProjectTask
	for _, p := range s.projects {
		for _, t := range p.Tasks {
			if t.IsOverdue(now) {
				out = append(out, ProjectTask{ProjectID: p.ID, ProjectName: p.Name, Task: t.Clone()})
			}
		}
	}
	return out
}

// ProjectFilter narrows the project list. Empty fields match everything.
type ProjectFilter struct {
	Search   string
	Status   string
	Priority string
}

func (f ProjectFilter) match(p models.Project) bool {
	if f.Status != "" && !strings.EqualFold(p.Status, f.Status) {
		return false
	}
	if f.Priority != "" && !strings.EqualFold(p.Priority, f.Priority) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// FilterProjects returns the projects matching f, in display order.
func (s *Store) FilterProjects(f ProjectFilter) []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Project{}
	for _, p := range s.projects {
		if f.match(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// ProjectStats summarizes one project's tasks.
type ProjectStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	InProgress     int            `json:"in_progress"`
	Todo           int            `json:"todo"`
	Overdue        int            `json:"overdue"`
	ByType         map[string]int `json:"by_type"`
	ByPriority     map[string]int `json:"by_priority"`
	CompletionRate int            `json:"completion_rate"`
	TeamSize       int            `json:"team_size"`
}

// ProjectStats computes task statistics for a project. Completion rate is a rounded
// percentage, 0 for a project without tasks.
func (s *Store) ProjectStats(projectID models.ID, now time.Time) (ProjectStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pi := s.projectIndex(projectID)
	if pi < 0 {
		return ProjectStats{}, false
	}
	p := s.projects[pi]
	st := ProjectStats{
		Total:      len(p.Tasks),
		ByType:     make(map[string]int),
		ByPriority: make(map[string]int),
		TeamSize:   len(p.Members),
	}
	for _, t := range p.Tasks {
		switch t.Status {
		case models.StatusCompleted:
			st.Completed++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusTodo:
			st.Todo++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.Type != "" {
			st.ByType[t.Type]++
		}
		if t.Priority != "" {
			st.ByPriority[t.Priority]++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = (st.Completed*100 + st.Total/2) / st.Total
	}
	return st, true
}

// DashboardStats counts projects and tasks across the workspace.
type DashboardStats struct {
	Projects       int            `json:"projects"`
	ByStatus       map[string]int `json:"by_status"`
	Tasks          int            `json:"tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	Notifications  int            `json:"unread_notifications"`
}

func (s *Store) DashboardStats() DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := DashboardStats{Projects: len(s.projects), ByStatus: make(map[string]int), Notifications: s.unread}
	for _, p := range s.projects {
		if p.Status != "" {
			d.ByStatus[p.Status]++
		}
		d.Tasks += len(p.Tasks)
		for _, t := range p.Tasks {
			if t.Status == models.StatusCompleted {
				d.CompletedTasks++
			}
		}
	}
	return d
}
