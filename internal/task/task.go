// Package task defines the in-memory model for the tagged task store:
// documents, tag partitions, tasks, subtasks, and the identifier forms
// used to address them.
package task

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusDeferred   Status = "deferred"
	StatusBlocked    Status = "blocked"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusDeferred, StatusBlocked, StatusCancelled:
		return true
	}
	return false
}

// Priority represents the scheduling priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Subtask is a unit of work nested under a parent task. Its ID is unique
// only within the parent's subtask list and is always addressed externally
// through the compound form "parent.sub".
type Subtask struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       Status `json:"status"`
	Dependencies []int  `json:"dependencies,omitempty"`
}

// Task is a top-level unit of work. The ID is unique within its partition
// only; the same integer may exist in two different tags. Dependencies
// reference other task IDs in the same partition.
type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority,omitempty"`
	Dependencies []int      `json:"dependencies,omitempty"`
	Subtasks     []*Subtask `json:"subtasks,omitempty"`
}

// Validate checks the task's field values.
func (t *Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("task id must be positive (got %d)", t.ID)
	}
	if t.Title == "" {
		return fmt.Errorf("task %d: title is required", t.ID)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("task %d: invalid status %q", t.ID, t.Status)
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("task %d: invalid priority %q", t.ID, t.Priority)
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return fmt.Errorf("task %d: depends on itself", t.ID)
		}
	}
	seen := make(map[int]bool, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if st.ID <= 0 {
			return fmt.Errorf("task %d: subtask id must be positive (got %d)", t.ID, st.ID)
		}
		if seen[st.ID] {
			return fmt.Errorf("task %d: duplicate subtask id %d", t.ID, st.ID)
		}
		seen[st.ID] = true
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	for _, st := range t.Subtasks {
		if st.Status == "" {
			st.Status = StatusPending
		}
	}
}

// Subtask returns the subtask with the given ID, or nil.
func (t *Task) Subtask(id int) *Subtask {
	for _, st := range t.Subtasks {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// RemoveSubtask deletes the subtask with the given ID from the task,
// preserving the order of the remaining subtasks. It reports whether a
// subtask was removed.
func (t *Task) RemoveSubtask(id int) bool {
	for i, st := range t.Subtasks {
		if st.ID == id {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Dependencies = append([]int(nil), t.Dependencies...)
	c.Subtasks = make([]*Subtask, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		sc := *st
		sc.Dependencies = append([]int(nil), st.Dependencies...)
		c.Subtasks = append(c.Subtasks, &sc)
	}
	return &c
}

// Metadata carries optional bookkeeping for a tag partition.
type Metadata struct {
	Created     *time.Time `json:"created,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Partition is an isolated, ordered collection of tasks under one tag.
// Task order is significant: display and default ID assignment depend on it.
type Partition struct {
	Tasks    []*Task   `json:"tasks"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Find returns the task with the given ID, or nil.
func (p *Partition) Find(id int) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Remove deletes the task with the given ID from the partition, preserving
// the order of the remaining tasks. It reports whether a task was removed.
func (p *Partition) Remove(id int) bool {
	for i, t := range p.Tasks {
		if t.ID == id {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// MaxID returns the highest task ID in the partition, or 0 when empty.
func (p *Partition) MaxID() int {
	max := 0
	for _, t := range p.Tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// Touch updates the partition's updated timestamp, creating metadata if
// none exists.
func (p *Partition) Touch(now time.Time) {
	if p.Metadata == nil {
		p.Metadata = &Metadata{Created: &now}
	}
	p.Metadata.Updated = &now
}

// Validate checks every task in the partition and the uniqueness of IDs.
func (p *Partition) Validate() error {
	seen := make(map[int]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
