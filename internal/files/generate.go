// Package files regenerates the derived per-task text files for a tag
// partition after the document changes.
//
// Regeneration is a post-commit hook: failures are logged by the caller
// and never propagate into the store write that triggered them.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/task"
)

// Generator writes one text file per task under dir/<tag>/ and prunes
// files for tasks that no longer exist. Add and delete notifications go
// through the registry, when one is attached.
type Generator struct {
	dir      string
	registry *notify.Registry
}

// NewGenerator creates a generator rooted at dir. registry may be nil.
func NewGenerator(dir string, registry *notify.Registry) *Generator {
	return &Generator{dir: dir, registry: registry}
}

// Dir returns the generator's root directory.
func (g *Generator) Dir() string {
	return g.dir
}

// Regenerate rewrites the derived files for one partition. Existing files
// whose task IDs are no longer present are removed. opID ties the emitted
// notifications to the operation that caused them.
func (g *Generator) Regenerate(tag string, p *task.Partition, opID string) error {
	tagDir := filepath.Join(g.dir, tag)
	if err := os.MkdirAll(tagDir, 0755); err != nil {
		return fmt.Errorf("failed to create task file directory: %w", err)
	}

	existing, err := listTaskFiles(tagDir)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		name := taskFileName(t.ID)
		current[name] = true

		path := filepath.Join(tagDir, name)
		isNew := !existing[name]
		if err := os.WriteFile(path, []byte(renderTask(tag, t)), 0644); err != nil {
			return fmt.Errorf("failed to write task file %s: %w", path, err)
		}
		if isNew {
			g.emit(notify.KindTaskFileAdded, path, tag, t.ID, opID)
		}
	}

	for name := range existing {
		if current[name] {
			continue
		}
		path := filepath.Join(tagDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale task file %s: %w", path, err)
		}
		g.emit(notify.KindTaskFileDeleted, path, tag, 0, opID)
	}

	return nil
}

func (g *Generator) emit(kind notify.Kind, path, tag string, id int, opID string) {
	if g.registry == nil {
		return
	}
	ev := notify.Event{ID: opID, Kind: kind, Path: path, Tag: tag}
	if id > 0 {
		ev.TaskIDs = []int{id}
	}
	g.registry.Emit(ev)
}

func taskFileName(id int) string {
	return fmt.Sprintf("task_%03d.txt", id)
}

func listTaskFiles(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to read task file directory: %w", err)
	}
	files := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "task_") && strings.HasSuffix(name, ".txt") {
			files[name] = true
		}
	}
	return files, nil
}

func renderTask(tag string, t *task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Task ID: %d\n", t.ID)
	fmt.Fprintf(&b, "# Title: %s\n", t.Title)
	fmt.Fprintf(&b, "# Tag: %s\n", tag)
	fmt.Fprintf(&b, "# Status: %s\n", t.Status)
	if t.Priority != "" {
		fmt.Fprintf(&b, "# Priority: %s\n", t.Priority)
	}
	if len(t.Dependencies) > 0 {
		deps := make([]string, len(t.Dependencies))
		for i, dep := range t.Dependencies {
			deps[i] = fmt.Sprintf("%d", dep)
		}
		fmt.Fprintf(&b, "# Dependencies: %s\n", strings.Join(deps, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	if len(t.Subtasks) > 0 {
		b.WriteString("\n## Subtasks\n")
		for _, st := range t.Subtasks {
			fmt.Fprintf(&b, "\n### %d.%d %s [%s]\n", t.ID, st.ID, st.Title, st.Status)
			if st.Description != "" {
				fmt.Fprintf(&b, "%s\n", st.Description)
			}
		}
	}
	return b.String()
}
