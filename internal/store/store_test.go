package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hfern/tagtask/internal/task"
)

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if parseErr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", parseErr.Path, path)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	snap := New(path)
	snap.Doc.Tags["backlog"] = &task.Partition{Tasks: []*task.Task{
		{ID: 1, Title: "First", Status: task.StatusPending, Dependencies: []int{2}},
		{ID: 2, Title: "Second", Status: task.StatusDone},
	}}
	if err := snap.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p := got.Doc.Tag("backlog")
	if p == nil || len(p.Tasks) != 2 {
		t.Fatalf("backlog = %+v, want 2 tasks", p)
	}
	if p.Tasks[0].Dependencies[0] != 2 {
		t.Errorf("task 1 deps = %v, want [2]", p.Tasks[0].Dependencies)
	}
	if got.Checksum() == "" {
		t.Error("loaded snapshot has no checksum")
	}
}

func TestSave_TrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := New(path).Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Errorf("document does not end with a newline: %q", string(data[len(data)-4:]))
	}
}

func TestSave_ConcurrentModification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := New(path).Save(); err != nil {
		t.Fatalf("seed Save() error = %v", err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Another process rewrites the file between our load and save.
	other, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	other.Doc.Tags["sneaky"] = &task.Partition{Tasks: []*task.Task{}}
	if err := other.Save(); err != nil {
		t.Fatalf("interfering Save() error = %v", err)
	}

	err = snap.Save()
	if !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("Save() error = %v, want ErrConcurrentModification", err)
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false for concurrent modification")
	}
}

func TestSave_CreatedAfterLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	snap := New(path)
	if err := New(path).Save(); err != nil { // someone else creates it first
		t.Fatal(err)
	}

	err := snap.Save()
	if !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("Save() error = %v, want ErrConcurrentModification for file created after load", err)
	}
}

func TestSave_DeletedAfterLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := New(path).Save(); err != nil {
		t.Fatal(err)
	}
	snap, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	err = snap.Save()
	if !errors.Is(err, ErrConcurrentModification) {
		t.Errorf("Save() error = %v, want ErrConcurrentModification for file deleted after load", err)
	}
}

func TestSave_AdvancesChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := New(path).Save(); err != nil {
		t.Fatal(err)
	}
	snap, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	snap.Doc.Tags["extra"] = &task.Partition{Tasks: []*task.Task{}}
	if err := snap.Save(); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	// Same snapshot saves again without conflict.
	if err := snap.Save(); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
}

func TestLoad_NeverModifiesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	legacy := []byte(`{"tasks": [{"id": 1, "title": "A", "status": "pending"}]}` + "\n")
	if err := os.WriteFile(path, legacy, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(legacy) {
		t.Error("Load() rewrote the legacy document on disk")
	}
}
