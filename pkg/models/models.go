// Package models provides the wire types of the project management API.
// These types mirror the backend JSON and are shared by pkg/client, the state store,
// and the local bridge server.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// User is an account on the backend. A reference to a user may arrive as a bare id;
// in that case only ID is populated.
type User struct {
	ID          ID     `json:"_id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Image       string `json:"image,omitempty"`
	Role        string `json:"role,omitempty"`
	IsTeamOwner bool   `json:"isTeamOwner,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts a full user document or a bare id reference.
func (u *User) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id ID
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*u = User{ID: id}
		return nil
	}
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User(p)
	return nil
}

// Member links a user to a project with a role.
type Member struct {
	ID   ID     `json:"_id,omitempty"`
	User User   `json:"user"`
	Role string `json:"role,omitempty"`
}

// Comment is a note on a task.
type Comment struct {
	ID        ID     `json:"_id"`
	User      User   `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Attachment is a file uploaded to a task.
type Attachment struct {
	ID   ID     `json:"_id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Task is a work item nested inside exactly one project.
type Task struct {
	ID          ID           `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status,omitempty"`
	Type        string       `json:"type,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Assignee    *User        `json:"assignee,omitempty"`
	DueDate     string       `json:"due_date,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Project     ID           `json:"project,omitempty"`
	CreatedBy   *User        `json:"createdBy,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
}

// Project groups tasks and members.
type Project struct {
	ID          ID       `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Progress    int      `json:"progress"`
	Members     []Member `json:"members,omitempty"`
	Tasks       []Task   `json:"tasks,omitempty"`
	CreatedBy   *User    `json:"createdBy,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// Notification is an in-app alert for the signed-in user.
type Notification struct {
	ID        ID     `json:"_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UnreadCount is the /notifications/unread-count response.
type UnreadCount struct {
	Count int `json:"count"`
}

// ParseTime parses an ISO-8601 date or date-time as sent by the API.
// The store keeps dates as strings; consumers parse on demand.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsOverdue reports whether the task has a due date before now and is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusCompleted {
		return false
	}
	due, ok := ParseTime(t.DueDate)
	return ok && due.Before(now)
}

// AssigneeID returns the assignee's id or "" when unassigned.
func (t Task) AssigneeID() ID {
	if t.Assignee == nil {
		return ""
	}
	return t.Assignee.ID
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.Assignee != nil {
		a := *t.Assignee
		out.Assignee = &a
	}
	if t.CreatedBy != nil {
		c := *t.CreatedBy
		out.CreatedBy = &c
	}
	if t.Comments != nil {
		out.Comments = append([]Comment(nil), t.Comments...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]Attachment(nil), t.Attachments...)
	}
	return out
}

// Clone returns a deep copy of the project, including nested tasks.
func (p Project) Clone() Project {
	out := p
	if p.CreatedBy != nil {
		c := *p.CreatedBy
		out.CreatedBy = &c
	}
	if p.Members != nil {
		out.Members = append([]Member(nil), p.Members...)
	}
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	return out
}

// CloneProjects deep copies a project list, preserving nil.
func CloneProjects(in []Project) []Project {
	if in == nil {
		return nil
	}
	out := make([]Project, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
