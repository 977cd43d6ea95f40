package move

import (
	"fmt"
	"sort"

	"github.com/hfern/tagtask/internal/graph"
	"github.com/hfern/tagtask/internal/task"
)

// Validate checks a proposed move against the document and produces an
// executable plan or a typed error. The document is not mutated; every
// failure mode is detected here, before anything touches disk.
func Validate(doc *task.Document, req Request) (*Plan, error) {
	if req.WithDependencies && req.IgnoreDependencies {
		return nil, fmt.Errorf("withDependencies and ignoreDependencies are mutually exclusive")
	}
	if len(req.Refs) == 0 {
		return nil, fmt.Errorf("no tasks to move")
	}

	src := doc.Tag(req.SourceTag)
	if src == nil {
		return nil, &TagNotFoundError{Tag: req.SourceTag}
	}

	seen := make(map[task.Ref]bool, len(req.Refs))
	for _, ref := range req.Refs {
		if seen[ref] {
			return nil, fmt.Errorf("task %s listed twice in move request", ref)
		}
		seen[ref] = true
		if err := resolveRef(src, req.SourceTag, ref); err != nil {
			return nil, err
		}
	}

	if req.IsCrossTag() {
		return validateCrossTag(doc, src, req)
	}
	return validateWithinTag(src, req)
}

// resolveRef verifies that a ref addresses an existing task or subtask in
// the partition.
func resolveRef(src *task.Partition, tag string, ref task.Ref) error {
	parent := src.Find(ref.Parent)
	if parent == nil {
		return &TaskNotFoundError{Tag: tag, Ref: task.Ref{Parent: ref.Parent}}
	}
	if ref.IsSubtask() && parent.Subtask(ref.Sub) == nil {
		return &TaskNotFoundError{Tag: tag, Ref: ref}
	}
	return nil
}

// validateWithinTag plans ID reassignments and subtask promotions inside
// one partition.
func validateWithinTag(src *task.Partition, req Request) (*Plan, error) {
	plan := &Plan{
		SourceTag: req.SourceTag,
		TargetTag: req.SourceTag,
		Remap:     make(map[int]int),
		ClearDeps: make(map[int][]int),
	}

	requested := make(map[int]task.Ref, len(req.Refs))
	for _, ref := range req.Refs {
		newID, ok := req.NewIDs[ref.String()]
		if !ok {
			return nil, fmt.Errorf("no new ID requested for %s", ref)
		}
		if newID <= 0 {
			return nil, fmt.Errorf("invalid new ID %d for %s: id must be positive", newID, ref)
		}
		if prev, dup := requested[newID]; dup {
			return nil, fmt.Errorf("new ID %d requested for both %s and %s", newID, prev, ref)
		}
		requested[newID] = ref

		// A task may keep its own ID; a promoted subtask never owns its
		// parent's ID, so for promotions any occupant conflicts.
		replace := false
		if occupant := src.Find(newID); occupant != nil && (ref.IsSubtask() || newID != ref.Parent) {
			if !req.Overwrite {
				return nil, &IDConflictError{Tag: req.SourceTag, ID: newID}
			}
			replace = true
		}

		entry := Entry{
			Source:          ref,
			FromTag:         req.SourceTag,
			ToTag:           req.SourceTag,
			NewID:           newID,
			ReplaceExisting: replace,
		}

		if ref.IsSubtask() {
			parent := src.Find(ref.Parent)
			entry.Task = promote(src, parent, parent.Subtask(ref.Sub), newID)
			entry.Parent = parent
			entry.Promotion = true
		} else {
			entry.Task = src.Find(ref.Parent)
			plan.Remap[ref.Parent] = newID
		}
		plan.Entries = append(plan.Entries, entry)
	}

	return plan, nil
}

// promote synthesizes a top-level task from a subtask. Title, description
// and status carry over; priority is inherited from the parent. Sibling
// subtask dependencies cannot survive outside the parent's scope and are
// dropped; dependencies resolving to top-level tasks are kept.
func promote(src *task.Partition, parent *task.Task, st *task.Subtask, newID int) *task.Task {
	t := &task.Task{
		ID:          newID,
		Title:       st.Title,
		Description: st.Description,
		Status:      st.Status,
		Priority:    parent.Priority,
	}
	for _, dep := range st.Dependencies {
		if parent.Subtask(dep) != nil {
			continue // sibling reference, scope disappears with promotion
		}
		if src.Find(dep) != nil && dep != newID {
			t.Dependencies = append(t.Dependencies, dep)
		}
	}
	return t
}

// validateCrossTag plans a move between two partitions, including
// dependency conflict handling and destination ID assignment.
func validateCrossTag(doc *task.Document, src *task.Partition, req Request) (*Plan, error) {
	for _, ref := range req.Refs {
		if ref.IsSubtask() {
			return nil, &InvalidSubtaskMoveError{Ref: ref, FromTag: req.SourceTag, ToTag: req.TargetTag}
		}
	}

	dst := doc.Tag(req.TargetTag)
	if dst == nil && !req.CreateTarget {
		return nil, &TagNotFoundError{Tag: req.TargetTag}
	}

	ix := graph.Build(src)
	seeds := make([]int, 0, len(req.Refs))
	for _, ref := range req.Refs {
		seeds = append(seeds, ref.Parent)
	}

	// Dependencies are pulled toward the mover, never the reverse: the
	// closure expands the move set downward through dependency edges only.
	var moving map[int]bool
	if req.WithDependencies {
		moving = ix.Closure(seeds)
	} else {
		moving = make(map[int]bool, len(seeds))
		for _, id := range seeds {
			moving[id] = true
		}
	}

	// Ordered move set: relative order in the source partition is
	// preserved at the destination.
	var ordered []int
	for _, t := range src.Tasks {
		if moving[t.ID] {
			ordered = append(ordered, t.ID)
		}
	}

	if !req.WithDependencies && !req.IgnoreDependencies {
		var conflicts []Conflict
		for _, id := range ordered {
			for _, dep := range ix.DanglingDependencies(id, moving) {
				conflicts = append(conflicts, Conflict{TaskID: id, DependsOn: dep})
			}
		}
		if len(conflicts) > 0 {
			return nil, &DependencyConflictError{
				FromTag:   req.SourceTag,
				ToTag:     req.TargetTag,
				Conflicts: conflicts,
			}
		}
	}

	plan := &Plan{
		SourceTag:    req.SourceTag,
		TargetTag:    req.TargetTag,
		CrossTag:     true,
		CreateTarget: dst == nil,
		Remap:        make(map[int]int),
		ClearDeps:    make(map[int][]int),
	}

	// Fresh IDs above the destination's current maximum, assigned in
	// source order. IDs freed by this operation are never reused.
	base := 0
	if dst != nil {
		base = dst.MaxID()
	}
	for i, id := range ordered {
		plan.Remap[id] = base + i + 1
	}

	for _, id := range ordered {
		t := src.Find(id)
		if req.IgnoreDependencies {
			for _, dep := range t.Dependencies {
				if !moving[dep] {
					plan.ClearDeps[id] = append(plan.ClearDeps[id], dep)
				}
			}
		}
		for _, dependent := range ix.StrandedDependents(id, moving) {
			plan.DanglingInSource = append(plan.DanglingInSource, Edge{TaskID: dependent, DependsOn: id})
		}
		plan.Entries = append(plan.Entries, Entry{
			Source:  task.Ref{Parent: id},
			Task:    t,
			FromTag: req.SourceTag,
			ToTag:   req.TargetTag,
			NewID:   plan.Remap[id],
		})
	}

	sort.Slice(plan.DanglingInSource, func(i, j int) bool {
		a, b := plan.DanglingInSource[i], plan.DanglingInSource[j]
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.DependsOn < b.DependsOn
	})

	return plan, nil
}
