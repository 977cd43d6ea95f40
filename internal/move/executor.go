package move

import (
	"time"

	"github.com/hfern/tagtask/internal/task"
)

// Apply executes a validated plan against the in-memory document and
// returns a summary of the effects. It performs no I/O and is total for
// any plan produced by Validate: every failure case has already been
// rejected.
//
// Per entry, in order: the task is detached from the source sequence, its
// ID reassigned, surviving dependency references rewritten through the
// plan's remap, and the task placed in the destination preserving the
// moved set's relative order.
func Apply(doc *task.Document, plan *Plan, now time.Time) *Summary {
	if plan.CrossTag {
		return applyCrossTag(doc, plan, now)
	}
	return applyWithinTag(doc, plan, now)
}

func applyWithinTag(doc *task.Document, plan *Plan, now time.Time) *Summary {
	src := doc.Tag(plan.SourceTag)
	summary := &Summary{}

	for _, entry := range plan.Entries {
		if entry.ReplaceExisting {
			src.Remove(entry.NewID)
		}
		if entry.Promotion {
			entry.Parent.RemoveSubtask(entry.Source.Sub)
			src.Tasks = append(src.Tasks, entry.Task)
		} else {
			// A plain ID reassignment keeps the task's position; order is
			// display-significant and nothing about the move changes it.
			entry.Task.ID = entry.NewID
		}
		summary.Moved = append(summary.Moved, MovedTask{
			ID:      entry.NewID,
			FromTag: entry.FromTag,
			ToTag:   entry.ToTag,
			OldID:   entry.Source.String(),
			Title:   entry.Task.Title,
		})
	}

	// Every surviving reference in the partition follows the moved IDs.
	// Subtask dependency lists are parent-scoped and not touched.
	for _, t := range src.Tasks {
		rewriteDeps(t, plan.Remap, nil)
	}

	src.Touch(now)
	return summary
}

func applyCrossTag(doc *task.Document, plan *Plan, now time.Time) *Summary {
	src := doc.Tag(plan.SourceTag)
	dst := doc.Tag(plan.TargetTag)
	summary := &Summary{DanglingInSource: plan.DanglingInSource}

	if plan.CreateTarget {
		dst = &task.Partition{Tasks: []*task.Task{}, Metadata: &task.Metadata{Created: &now}}
		doc.Tags[plan.TargetTag] = dst
		summary.CreatedTag = plan.TargetTag
	}

	for _, entry := range plan.Entries {
		oldID := entry.Source.Parent
		src.Remove(oldID)

		cleared := toSet(plan.ClearDeps[oldID])
		summary.ClearedDependencies += len(cleared)
		rewriteDeps(entry.Task, plan.Remap, cleared)

		entry.Task.ID = entry.NewID
		dst.Tasks = append(dst.Tasks, entry.Task)

		summary.Moved = append(summary.Moved, MovedTask{
			ID:      entry.NewID,
			FromTag: entry.FromTag,
			ToTag:   entry.ToTag,
			OldID:   entry.Source.String(),
			Title:   entry.Task.Title,
		})
	}

	src.Touch(now)
	dst.Touch(now)
	return summary
}

// rewriteDeps filters and remaps a task's dependency list in place:
// cleared edges are dropped, remapped IDs are followed, and duplicate or
// self-referential results are discarded.
func rewriteDeps(t *task.Task, remap map[int]int, cleared map[int]bool) {
	if len(t.Dependencies) == 0 {
		return
	}
	out := t.Dependencies[:0]
	seen := make(map[int]bool, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		if cleared[dep] {
			continue
		}
		if mapped, ok := remap[dep]; ok {
			dep = mapped
		}
		if dep == t.ID || seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	t.Dependencies = out
	if len(t.Dependencies) == 0 {
		t.Dependencies = nil
	}
}

func toSet(ids []int) map[int]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
