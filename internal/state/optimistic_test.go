package state

import (
	"strings"
	"testing"

	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

func TestNewTempID(t *testing.T) {
	t.Parallel()
	a, b := NewTempID(), NewTempID()
	if a == b {
		t.Fatalf("temp ids collide: %s", a)
	}
	if !strings.HasPrefix(a.String(), TempIDPrefix) {
		t.Fatalf("temp id %q lacks prefix", a)
	}
}

func TestProjectInsert_commit(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginProjectInsert(tmp, models.Project{Name: "Draft"})
	if got := s.Projects()[0]; got.ID != tmp || got.Name != "Draft" {
		t.Fatalf("head = %+v, want temp project", got)
	}
	if p := s.Pending(); len(p) != 1 || p[0] != tmp {
		t.Fatalf("Pending = %v", p)
	}
	s.CommitProjectInsert(tmp, models.Project{ID: "p100", Name: "Draft"})
	ps := s.Projects()
	if ps[0].ID != "p100" || len(ps) != 4 {
		t.Fatalf("projects = %v, want p100 at head of 4", ids(ps))
	}
	if len(s.Pending()) != 0 {
		t.Fatal("pending should be empty after commit")
	}
	// A second commit is a no-op.
	s.CommitProjectInsert(tmp, models.Project{ID: "p101"})
	if _, ok := s.Project("p101"); ok {
		t.Fatal("second commit inserted a project")
	}
}

func TestProjectInsert_rollback(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	before := s.Snapshot()
	tmp := NewTempID()
	s.BeginProjectInsert(tmp, models.Project{Name: "Draft"})
	s.RollbackProjectInsert(tmp)
	after := s.Snapshot()
	if len(after.Projects) != len(before.Projects) || after.Projects[0].ID != "p1" {
		t.Fatalf("projects after rollback = %v", ids(after.Projects))
	}
	s.RollbackProjectInsert("tmp-unknown")
}

func TestProjectInsert_commitAfterReset(t *testing.T) {
	t.Parallel()
	s := New()
	tmp := NewTempID()
	s.BeginProjectInsert(tmp, models.Project{Name: "Draft"})
	s.Reset()
	s.CommitProjectInsert(tmp, models.Project{ID: "p1"})
	if n := len(s.Projects()); n != 0 {
		t.Fatalf("projects = %d, want 0", n)
	}
}

func TestTaskInsert(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginTaskInsert("p1", tmp, models.Task{Title: "new"})
	p, _ := s.Project("p1")
	if p.Tasks[0].ID != tmp {
		t.Fatalf("head task = %s, want %s", p.Tasks[0].ID, tmp)
	}
	s.CommitTaskInsert(tmp, models.Task{ID: "t2", Title: "new"})
	p, _ = s.Project("p1")
	if len(p.Tasks) != 2 || p.Tasks[0].ID != "t2" || p.Tasks[1].ID != "t1" {
		t.Fatalf("tasks = %+v", p.Tasks)
	}

	tmp2 := NewTempID()
	s.BeginTaskInsert("p1", tmp2, models.Task{Title: "doomed"})
	s.RollbackTaskInsert(tmp2)
	p, _ = s.Project("p1")
	if len(p.Tasks) != 2 {
		t.Fatalf("tasks after rollback = %d, want 2", len(p.Tasks))
	}
}

func TestTaskInsert_missingProject(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginTaskInsert("nope", tmp, models.Task{Title: "x"})
	if len(s.Pending()) != 0 {
		t.Fatal("begin on a missing project should not record a pending insert")
	}
}

func TestMemberInsert(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginMemberInsert("p2", tmp, models.Member{User: models.User{ID: "u1"}, Role: models.RoleMember})
	s.CommitMemberInsert(tmp, models.Member{ID: "m1", User: models.User{ID: "u1", Name: "Ada"}, Role: models.RoleMember})
	p, _ := s.Project("p2")
	if len(p.Members) != 1 || p.Members[0].ID != "m1" || p.Members[0].User.Name != "Ada" {
		t.Fatalf("members = %+v", p.Members)
	}

	tmp2 := NewTempID()
	s.BeginMemberInsert("p2", tmp2, models.Member{User: models.User{ID: "u2"}})
	s.RollbackMemberInsert(tmp2)
	p, _ = s.Project("p2")
	if len(p.Members) != 1 {
		t.Fatalf("members after rollback = %+v", p.Members)
	}
}

func TestCommit_wrongKindIgnored(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginTaskInsert("p1", tmp, models.Task{Title: "x"})
	s.CommitProjectInsert(tmp, models.Project{ID: "px"})
	if len(s.Pending()) != 1 {
		t.Fatal("project commit consumed a task insert")
	}
}

func TestProjectInsert_commitAfterReplace(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginProjectInsert(tmp, models.Project{Name: "Draft"})
	// A refresh lands before the create call returns.
	s.SetProjects([]models.Project{{ID: "p1"}, {ID: "p2"}})
	s.CommitProjectInsert(tmp, models.Project{ID: "p100", Name: "Draft"})
	ps := s.Projects()
	if len(ps) != 3 || ps[0].ID != "p100" {
		t.Fatalf("projects = %v, want p100 prepended to 3", ids(ps))
	}

	// The refresh already carried the new project: replace, don't duplicate.
	tmp2 := NewTempID()
	s.BeginProjectInsert(tmp2, models.Project{Name: "Other"})
	s.SetProjects([]models.Project{{ID: "p1"}, {ID: "p200", Name: "stale"}})
	s.CommitProjectInsert(tmp2, models.Project{ID: "p200", Name: "Other"})
	ps = s.Projects()
	if len(ps) != 2 || ps[1].Name != "Other" {
		t.Fatalf("projects = %+v", ps)
	}
}

func TestTaskInsert_commitAfterReplace(t *testing.T) {
	t.Parallel()
	s := seeded(t)
	tmp := NewTempID()
	s.BeginTaskInsert("p1", tmp, models.Task{Title: "new"})
	s.SetProjects([]models.Project{{ID: "p1", Tasks: []models.Task{{ID: "t1"}}}})
	s.CommitTaskInsert(tmp, models.Task{ID: "t2", Title: "new"})
	p, _ := s.Project("p1")
	if len(p.Tasks) != 2 || p.Tasks[0].ID != "t2" {
		t.Fatalf("tasks = %+v", p.Tasks)
	}

	tmp2 := NewTempID()
	s.BeginTaskInsert("p1", tmp2, models.Task{Title: "again"})
	s.SetProjects([]models.Project{{ID: "p1", Tasks: []models.Task{{ID: "t3", Title: "stale"}}}})
	s.CommitTaskInsert(tmp2, models.Task{ID: "t3", Title: "again"})
	p, _ = s.Project("p1")
	if len(p.Tasks) != 1 || p.Tasks[0].Title != "again" {
		t.Fatalf("tasks = %+v", p.Tasks)
	}

	// The owning project is gone: nothing to insert into.
	tmp3 := NewTempID()
	s.BeginTaskInsert("p1", tmp3, models.Task{Title: "orphan"})
	s.SetProjects(nil)
	s.CommitTaskInsert(tmp3, models.Task{ID: "t4"})
	if n := len(s.Projects()); n != 0 {
		t.Fatalf("projects = %d, want 0", n)
	}
}
