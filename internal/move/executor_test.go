package move

import (
	"reflect"
	"testing"
	"time"

	"github.com/hfern/tagtask/internal/task"
)

func mustPlan(t *testing.T, doc *task.Document, req Request) *Plan {
	t.Helper()
	plan, err := Validate(doc, req)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return plan
}

func ids(p *task.Partition) []int {
	out := make([]int, 0, len(p.Tasks))
	for _, tk := range p.Tasks {
		out = append(out, tk.ID)
	}
	return out
}

func TestApply_WithinTag_Renumber(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{"backlog": {newTask(1), newTask(2)}})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		Refs:      refs("1"),
		NewIDs:    map[string]int{"1": 5},
	})

	summary := Apply(doc, plan, time.Now())

	got := ids(doc.Tag("backlog"))
	if !reflect.DeepEqual(got, []int{5, 2}) {
		t.Errorf("backlog IDs = %v, want [5 2] (task keeps its position)", got)
	}
	if len(summary.Moved) != 1 || summary.Moved[0].OldID != "1" || summary.Moved[0].ID != 5 {
		t.Errorf("summary.Moved = %+v, want 1 -> 5", summary.Moved)
	}
}

func TestApply_WithinTag_RewritesReferences(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{
		"backlog": {newTask(1), newTask(2, 1), newTask(3, 1, 2)},
	})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		Refs:      refs("1"),
		NewIDs:    map[string]int{"1": 10},
	})

	Apply(doc, plan, time.Now())

	p := doc.Tag("backlog")
	if !reflect.DeepEqual(p.Find(2).Dependencies, []int{10}) {
		t.Errorf("task 2 deps = %v, want [10]", p.Find(2).Dependencies)
	}
	if !reflect.DeepEqual(p.Find(3).Dependencies, []int{10, 2}) {
		t.Errorf("task 3 deps = %v, want [10 2]", p.Find(3).Dependencies)
	}
}

func TestApply_WithinTag_Overwrite(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{"backlog": {newTask(1), newTask(2)}})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		Refs:      refs("1"),
		NewIDs:    map[string]int{"1": 2},
		Overwrite: true,
	})

	Apply(doc, plan, time.Now())

	p := doc.Tag("backlog")
	if len(p.Tasks) != 1 {
		t.Fatalf("backlog has %d tasks, want 1 after overwrite", len(p.Tasks))
	}
	got := p.Find(2)
	if got == nil || got.Title != "Task 1" {
		t.Errorf("occupant of ID 2 = %+v, want the moved Task 1", got)
	}
}

func TestApply_Promotion(t *testing.T) {
	parent := newTask(1)
	parent.Subtasks = []*task.Subtask{
		{ID: 1, Title: "first", Status: task.StatusPending},
		{ID: 2, Title: "second", Status: task.StatusPending},
	}
	doc := newDoc(map[string][]*task.Task{"backlog": {parent, newTask(2)}})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		Refs:      refs("1.1"),
		NewIDs:    map[string]int{"1.1": 5},
	})

	Apply(doc, plan, time.Now())

	p := doc.Tag("backlog")
	if err := p.Validate(); err != nil {
		t.Fatalf("partition invalid after promotion: %v", err)
	}
	if got := ids(p); !reflect.DeepEqual(got, []int{1, 2, 5}) {
		t.Errorf("backlog IDs = %v, want [1 2 5] (promotion appends)", got)
	}
	remaining := p.Find(1).Subtasks
	if len(remaining) != 1 || remaining[0].ID != 2 {
		t.Errorf("parent subtasks = %+v, want only subtask 2", remaining)
	}
	if p.Find(5).Title != "first" {
		t.Errorf("promoted task title = %q, want %q", p.Find(5).Title, "first")
	}
}

func TestApply_WithinTag_ParentMoveWithPromotion(t *testing.T) {
	// Moving a parent task and promoting one of its subtasks in the same
	// request must work in either order: the promotion detaches from the
	// parent even after the parent's ID has changed.
	tests := []struct {
		name string
		refs []task.Ref
	}{
		{"parent first", refs("1", "1.1")},
		{"promotion first", refs("1.1", "1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := newTask(1)
			parent.Subtasks = []*task.Subtask{
				{ID: 1, Title: "first", Status: task.StatusPending},
				{ID: 2, Title: "second", Status: task.StatusPending},
			}
			doc := newDoc(map[string][]*task.Task{"backlog": {parent, newTask(2)}})
			plan := mustPlan(t, doc, Request{
				SourceTag: "backlog",
				Refs:      tt.refs,
				NewIDs:    map[string]int{"1": 5, "1.1": 6},
			})

			Apply(doc, plan, time.Now())

			p := doc.Tag("backlog")
			if err := p.Validate(); err != nil {
				t.Fatalf("partition invalid after move: %v", err)
			}
			moved := p.Find(5)
			if moved == nil || moved.Title != "Task 1" {
				t.Fatalf("parent not found at ID 5: %+v", moved)
			}
			if len(moved.Subtasks) != 1 || moved.Subtasks[0].ID != 2 {
				t.Errorf("parent subtasks = %+v, want only subtask 2", moved.Subtasks)
			}
			promoted := p.Find(6)
			if promoted == nil || promoted.Title != "first" {
				t.Errorf("promoted task = %+v, want title %q at ID 6", promoted, "first")
			}
		})
	}
}

func TestApply_CrossTag_FreshIDs(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{
		"backlog":     {newTask(1), newTask(2)},
		"in-progress": {newTask(3)},
	})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		TargetTag: "in-progress",
		Refs:      refs("1"),
	})

	summary := Apply(doc, plan, time.Now())

	if got := ids(doc.Tag("backlog")); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("backlog IDs = %v, want [2]", got)
	}
	if got := ids(doc.Tag("in-progress")); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("in-progress IDs = %v, want [3 4]", got)
	}
	if summary.Moved[0].ToTag != "in-progress" || summary.Moved[0].ID != 4 {
		t.Errorf("summary.Moved = %+v, want landed as 4 in in-progress", summary.Moved)
	}
}

func TestApply_CrossTag_WithDependencies(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{
		"backlog":     {newTask(1, 2), newTask(2), newTask(3)},
		"in-progress": {newTask(5)},
	})
	plan := mustPlan(t, doc, Request{
		SourceTag:        "backlog",
		TargetTag:        "in-progress",
		Refs:             refs("1"),
		WithDependencies: true,
	})

	Apply(doc, plan, time.Now())

	if got := ids(doc.Tag("backlog")); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("backlog IDs = %v, want [3]", got)
	}
	dst := doc.Tag("in-progress")
	if got := ids(dst); !reflect.DeepEqual(got, []int{5, 6, 7}) {
		t.Errorf("in-progress IDs = %v, want [5 6 7]", got)
	}
	// Task 1 landed as 6, task 2 as 7: the edge moves with them.
	if !reflect.DeepEqual(dst.Find(6).Dependencies, []int{7}) {
		t.Errorf("moved task deps = %v, want remapped [7]", dst.Find(6).Dependencies)
	}
}

func TestApply_CrossTag_IgnoreDependencies(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{
		"backlog":     {newTask(1, 2, 3), newTask(2), newTask(3)},
		"in-progress": {},
	})
	plan := mustPlan(t, doc, Request{
		SourceTag:          "backlog",
		TargetTag:          "in-progress",
		Refs:               refs("1"),
		IgnoreDependencies: true,
	})

	summary := Apply(doc, plan, time.Now())

	moved := doc.Tag("in-progress").Find(1)
	if moved == nil {
		t.Fatal("task not found in destination")
	}
	if len(moved.Dependencies) != 0 {
		t.Errorf("moved task deps = %v, want none after forced move", moved.Dependencies)
	}
	if summary.ClearedDependencies != 2 {
		t.Errorf("ClearedDependencies = %d, want 2", summary.ClearedDependencies)
	}
}

func TestApply_CrossTag_CreateTarget(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{"backlog": {newTask(1)}})
	plan := mustPlan(t, doc, Request{
		SourceTag:    "backlog",
		TargetTag:    "done",
		Refs:         refs("1"),
		CreateTarget: true,
	})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	summary := Apply(doc, plan, now)

	dst := doc.Tag("done")
	if dst == nil {
		t.Fatal("target tag not created")
	}
	if got := ids(dst); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("done IDs = %v, want [1]", got)
	}
	if summary.CreatedTag != "done" {
		t.Errorf("summary.CreatedTag = %q, want %q", summary.CreatedTag, "done")
	}
	if dst.Metadata == nil || dst.Metadata.Created == nil {
		t.Error("created partition missing metadata timestamp")
	}
}

func TestApply_CrossTag_IDUniquenessPreserved(t *testing.T) {
	doc := newDoc(map[string][]*task.Task{
		"backlog":     {newTask(1), newTask(2), newTask(3)},
		"in-progress": {newTask(1), newTask(2)},
	})
	plan := mustPlan(t, doc, Request{
		SourceTag: "backlog",
		TargetTag: "in-progress",
		Refs:      refs("1", "3"),
	})

	Apply(doc, plan, time.Now())

	seen := make(map[int]bool)
	for _, tk := range doc.Tag("in-progress").Tasks {
		if seen[tk.ID] {
			t.Fatalf("duplicate ID %d in destination", tk.ID)
		}
		seen[tk.ID] = true
	}
	if got := ids(doc.Tag("in-progress")); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("in-progress IDs = %v, want [1 2 3 4]", got)
	}
}
