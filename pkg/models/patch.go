package models

import (
	"bytes"
	"encoding/json"
)

// TaskPatch is a partial task. Nil fields are left untouched by Apply.
// Assignee is tri-state: nil with ClearAssignee=false leaves it, ClearAssignee=true
// sets it to null, a non-nil value replaces it.
type TaskPatch struct {
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Status        *string       `json:"status,omitempty"`
	Type          *string       `json:"type,omitempty"`
	Priority      *string       `json:"priority,omitempty"`
	Assignee      *User         `json:"assignee,omitempty"`
	ClearAssignee bool          `json:"-"`
	DueDate       *string       `json:"due_date,omitempty"`
	Comments      *[]Comment    `json:"comments,omitempty"`
	Attachments   *[]Attachment `json:"attachments,omitempty"`
}

// Apply shallow-merges the patch onto a copy of t and returns it.
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	switch {
	case p.ClearAssignee:
		out.Assignee = nil
	case p.Assignee != nil:
		a := *p.Assignee
		out.Assignee = &a
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.Comments != nil {
		out.Comments = append([]Comment(nil), (*p.Comments)...)
	}
	if p.Attachments != nil {
		out.Attachments = append([]Attachment(nil), (*p.Attachments)...)
	}
	return out
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Type == nil &&
		p.Priority == nil && p.Assignee == nil && !p.ClearAssignee && p.DueDate == nil &&
		p.Comments == nil && p.Attachments == nil
}

// PatchFrom builds a patch that sets every field of a full task, as when a server
// response replaces a task wholesale.
func PatchFrom(t Task) TaskPatch {
	p := TaskPatch{
		Title:       &t.Title,
		Description: &t.Description,
		Status:      &t.Status,
		Type:        &t.Type,
		Priority:    &t.Priority,
		DueDate:     &t.DueDate,
	}
	if t.Assignee == nil {
		p.ClearAssignee = true
	} else {
		a := *t.Assignee
		p.Assignee = &a
	}
	if t.Comments != nil {
		c := append([]Comment(nil), t.Comments...)
		p.Comments = &c
	}
	if t.Attachments != nil {
		a := append([]Attachment(nil), t.Attachments...)
		p.Attachments = &a
	}
	return p
}

// Revert returns the patch that restores t's values for every field p touches.
func (p TaskPatch) Revert(t Task) TaskPatch {
	var r TaskPatch
	if p.Title != nil {
		r.Title = ptr(t.Title)
	}
	if p.Description != nil {
		r.Description = ptr(t.Description)
	}
	if p.Status != nil {
		r.Status = ptr(t.Status)
	}
	if p.Type != nil {
		r.Type = ptr(t.Type)
	}
	if p.Priority != nil {
		r.Priority = ptr(t.Priority)
	}
	if p.Assignee != nil || p.ClearAssignee {
		if t.Assignee == nil {
			r.ClearAssignee = true
		} else {
			a := *t.Assignee
			r.Assignee = &a
		}
	}
	if p.DueDate != nil {
		r.DueDate = ptr(t.DueDate)
	}
	if p.Comments != nil {
		c := append([]Comment(nil), t.Comments...)
		r.Comments = &c
	}
	if p.Attachments != nil {
		a := append([]Attachment(nil), t.Attachments...)
		r.Attachments = &a
	}
	return r
}

// MarshalJSON writes "assignee": null when ClearAssignee is set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	type plain TaskPatch
	b, err := json.Marshal(plain(p))
	if err != nil || !p.ClearAssignee {
		return b, err
	}
	if bytes.Equal(b, []byte("{}")) {
		return []byte(`{"assignee":null}`), nil
	}
	return append([]byte(`{"assignee":null,`), b[1:]...), nil
}

// UnmarshalJSON maps an explicit "assignee": null (or "") to ClearAssignee.
func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type plain TaskPatch
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if a, ok := raw["assignee"]; ok {
		trimmed := bytes.TrimSpace(a)
		if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
			v.Assignee = nil
			v.ClearAssignee = true
		}
	}
	*p = TaskPatch(v)
	return nil
}

func ptr[T any](v T) *T { return &v }
