package files

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/task"
)

func testPartition() *task.Partition {
	return &task.Partition{Tasks: []*task.Task{
		{
			ID: 1, Title: "Build parser", Status: task.StatusPending, Priority: task.PriorityHigh,
			Description:  "Tokenize then parse.",
			Dependencies: []int{2},
			Subtasks: []*task.Subtask{
				{ID: 1, Title: "Lexer", Status: task.StatusDone},
			},
		},
		{ID: 2, Title: "Design grammar", Status: task.StatusDone},
	}}
}

func TestRegenerate_WritesTaskFiles(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, nil)

	if err := g.Regenerate("backlog", testPartition(), "op-1"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "backlog", "task_001.txt"))
	if err != nil {
		t.Fatalf("task file not written: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"# Task ID: 1",
		"# Title: Build parser",
		"# Tag: backlog",
		"# Dependencies: 2",
		"Tokenize then parse.",
		"### 1.1 Lexer [done]",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("task file missing %q:\n%s", want, content)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "backlog", "task_002.txt")); err != nil {
		t.Errorf("second task file not written: %v", err)
	}
}

func TestRegenerate_PrunesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, nil)

	if err := g.Regenerate("backlog", testPartition(), "op-1"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	// Task 2 disappears; its file must go with it.
	p := testPartition()
	p.Tasks = p.Tasks[:1]
	if err := g.Regenerate("backlog", p, "op-2"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "backlog", "task_002.txt")); !os.IsNotExist(err) {
		t.Error("stale task file was not pruned")
	}
	if _, err := os.Stat(filepath.Join(dir, "backlog", "task_001.txt")); err != nil {
		t.Errorf("surviving task file missing: %v", err)
	}
}

func TestRegenerate_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	tagDir := filepath.Join(dir, "backlog")
	if err := os.MkdirAll(tagDir, 0755); err != nil {
		t.Fatal(err)
	}
	foreign := filepath.Join(tagDir, "notes.md")
	if err := os.WriteFile(foreign, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(dir, nil)
	if err := g.Regenerate("backlog", &task.Partition{}, "op-1"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if _, err := os.Stat(foreign); err != nil {
		t.Error("file outside the task_*.txt pattern was removed")
	}
}

func TestRegenerate_EmitsEvents(t *testing.T) {
	dir := t.TempDir()
	registry := notify.NewRegistry(log.New(io.Discard, "", 0))

	var events []notify.Event
	registry.Register(notify.ListenerFunc(func(ev notify.Event) {
		events = append(events, ev)
	}))

	g := NewGenerator(dir, registry)
	if err := g.Regenerate("backlog", testPartition(), "op-1"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	added := 0
	for _, ev := range events {
		if ev.Kind == notify.KindTaskFileAdded {
			added++
			if ev.ID != "op-1" || ev.Tag != "backlog" {
				t.Errorf("added event = %+v, want op-1 in backlog", ev)
			}
		}
	}
	if added != 2 {
		t.Errorf("got %d added events, want 2", added)
	}

	// Rewriting unchanged tasks is not an add.
	events = nil
	if err := g.Regenerate("backlog", testPartition(), "op-2"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	for _, ev := range events {
		if ev.Kind == notify.KindTaskFileAdded {
			t.Errorf("unexpected added event on rewrite: %+v", ev)
		}
	}

	// Deletion emits a delete event.
	events = nil
	p := testPartition()
	p.Tasks = p.Tasks[:1]
	if err := g.Regenerate("backlog", p, "op-3"); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	deleted := 0
	for _, ev := range events {
		if ev.Kind == notify.KindTaskFileDeleted {
			deleted++
		}
	}
	if deleted != 1 {
		t.Errorf("got %d deleted events, want 1", deleted)
	}
}
