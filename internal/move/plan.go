// Package move validates and applies task relocations within and across
// tag partitions: ID reassignment, subtask promotion, dependency rewriting
// and tag-array splicing.
//
// The split mirrors the store's all-or-nothing discipline: Validate
// inspects the document and produces either a Plan or a typed error before
// anything is mutated; Apply executes a validated plan and cannot fail.
package move

import "github.com/hfern/tagtask/internal/task"

// Request describes a proposed move against a loaded document.
type Request struct {
	// SourceTag names the partition the tasks are moved out of.
	SourceTag string

	// TargetTag names the destination partition for a cross-tag move.
	// Empty (or equal to SourceTag) means a within-tag move.
	TargetTag string

	// Refs are the tasks or subtasks to move, parsed at the boundary.
	Refs []task.Ref

	// NewIDs maps a ref's textual form ("3", "3.1") to the requested new
	// top-level ID. Required for every ref of a within-tag move; ignored
	// for cross-tag moves, where IDs are assigned in the destination.
	NewIDs map[string]int

	// WithDependencies pulls every dependency of the moved tasks
	// (transitively) into the move set of a cross-tag move.
	WithDependencies bool

	// IgnoreDependencies clears dependency edges that would otherwise be
	// severed by a cross-tag move.
	IgnoreDependencies bool

	// CreateTarget allows a cross-tag move to create a missing
	// destination tag instead of failing.
	CreateTarget bool

	// Overwrite allows a within-tag move to replace an existing task at
	// the requested ID. The default is a conflict, never silent loss.
	Overwrite bool
}

// IsCrossTag reports whether the request moves tasks between two distinct
// partitions.
func (r Request) IsCrossTag() bool {
	return r.TargetTag != "" && r.TargetTag != r.SourceTag
}

// Entry is one task relocation in a validated plan.
type Entry struct {
	// Source is the identifier the caller addressed: a task ID or a
	// compound subtask ID for a promotion.
	Source task.Ref

	// Task is the fully formed task to place at the destination: the
	// original for a task move, a synthesized top-level task for a
	// promotion. Dependency rewrites are applied at execution time.
	Task *task.Task

	FromTag string
	ToTag   string
	NewID   int

	// Promotion marks a subtask being detached from its parent and
	// promoted to a top-level task.
	Promotion bool

	// Parent is the task the promoted subtask is detached from, resolved
	// at validation time. Apply must not re-resolve it by ID: an earlier
	// entry of the same plan may have reassigned the parent's ID.
	Parent *task.Task

	// ReplaceExisting marks a within-tag move that overwrites the task
	// currently holding NewID.
	ReplaceExisting bool
}

// Edge is a dependency reference from one task to another within a single
// partition.
type Edge struct {
	TaskID    int
	DependsOn int
}

// Plan is the validated, executable description of a move. Apply is total
// over any plan produced by Validate.
type Plan struct {
	SourceTag string
	TargetTag string
	CrossTag  bool

	// CreateTarget instructs the executor to create the destination
	// partition.
	CreateTarget bool

	// Entries are ordered by the moved tasks' relative position in the
	// source partition, which is preserved at the destination.
	Entries []Entry

	// Remap maps old top-level IDs of moved tasks to their new IDs. It is
	// applied to every surviving reference among the moved set and, for
	// within-tag moves, across the whole partition.
	Remap map[int]int

	// ClearDeps maps an old task ID to the dependency IDs to drop from it,
	// populated when IgnoreDependencies severs edges.
	ClearDeps map[int][]int

	// DanglingInSource lists dependency edges that remain in the source
	// partition pointing at tasks this plan moves away. They are reported,
	// not rewritten: IDs are tag-local and the targets no longer exist in
	// the source.
	DanglingInSource []Edge
}

// MovedTask summarizes one relocated task for observability and UI
// consumption.
type MovedTask struct {
	ID      int    `json:"id"`
	FromTag string `json:"fromTag"`
	ToTag   string `json:"toTag"`
	OldID   string `json:"oldId"`
	Title   string `json:"title"`
}

// Summary enumerates the effects of an applied plan.
type Summary struct {
	// OperationID uniquely identifies one committed move operation.
	OperationID string `json:"operationId,omitempty"`

	Moved []MovedTask `json:"moved"`

	// ClearedDependencies counts dependency edges dropped by
	// IgnoreDependencies.
	ClearedDependencies int `json:"clearedDependencies,omitempty"`

	// DanglingInSource lists edges left unresolved in the source partition
	// by a cross-tag move, so callers can surface the inconsistency.
	DanglingInSource []Edge `json:"danglingInSource,omitempty"`

	// CreatedTag is the destination tag created by this operation, if any.
	CreatedTag string `json:"createdTag,omitempty"`
}
