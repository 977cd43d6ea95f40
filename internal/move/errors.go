package move

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hfern/tagtask/internal/task"
)

// Typed errors returned by Validate.
//
// Every validation failure carries the structured detail (tag names, IDs,
// conflicting pairs) needed to render it without re-reading the document.
// Check with errors.As():
//
//	var conflict *move.DependencyConflictError
//	if errors.As(err, &conflict) {
//	    for _, c := range conflict.Conflicts { ... }
//	}

// TagNotFoundError is returned when a referenced tag does not exist in the
// document.
type TagNotFoundError struct {
	Tag string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %q not found", e.Tag)
}

// TaskNotFoundError is returned when a referenced task or subtask does not
// exist in its partition.
type TaskNotFoundError struct {
	Tag string
	Ref task.Ref
}

func (e *TaskNotFoundError) Error() string {
	if e.Ref.IsSubtask() {
		return fmt.Sprintf("subtask %s not found in tag %q", e.Ref, e.Tag)
	}
	return fmt.Sprintf("task %s not found in tag %q", e.Ref, e.Tag)
}

// IDConflictError is returned when a within-tag move requests an ID that
// already denotes an existing task. Overwriting is never silent; the
// caller must opt in explicitly.
type IDConflictError struct {
	Tag string
	ID  int
}

func (e *IDConflictError) Error() string {
	return fmt.Sprintf("task %d already exists in tag %q", e.ID, e.Tag)
}

// Conflict names one dependency edge that a cross-tag move would sever:
// TaskID is being moved while DependsOn stays behind in the source tag.
type Conflict struct {
	TaskID    int
	DependsOn int
}

// DependencyConflictError is returned when a cross-tag move would separate
// tasks from dependencies left in the source tag and neither
// WithDependencies nor IgnoreDependencies was set.
type DependencyConflictError struct {
	FromTag   string
	ToTag     string
	Conflicts []Conflict
}

func (e *DependencyConflictError) Error() string {
	pairs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		pairs[i] = fmt.Sprintf("%d→%d", c.TaskID, c.DependsOn)
	}
	return fmt.Sprintf("cannot move tasks from %q to %q: dependencies would be left behind (%s); use --with-dependencies or --ignore-dependencies",
		e.FromTag, e.ToTag, strings.Join(pairs, ", "))
}

// ConflictingIDs returns the sorted, de-duplicated IDs of tasks whose
// dependencies caused the conflict.
func (e *DependencyConflictError) ConflictingIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, c := range e.Conflicts {
		if !seen[c.TaskID] {
			seen[c.TaskID] = true
			ids = append(ids, c.TaskID)
		}
	}
	sort.Ints(ids)
	return ids
}

// InvalidSubtaskMoveError is returned when a subtask is addressed in a
// cross-tag move. Subtasks have no existence outside their parent; only
// promotion within the same tag is supported.
type InvalidSubtaskMoveError struct {
	Ref     task.Ref
	FromTag string
	ToTag   string
}

func (e *InvalidSubtaskMoveError) Error() string {
	return fmt.Sprintf("cannot move subtask %s from %q to %q: subtasks can only be promoted within their own tag",
		e.Ref, e.FromTag, e.ToTag)
}
