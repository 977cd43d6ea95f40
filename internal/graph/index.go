// Package graph builds an in-memory adjacency view of one tag partition's
// dependency edges for lookup and move validation.
//
// The index is built on demand and discarded after the operation; it never
// outlives the document it was built from. Cycles are tolerated as a
// pre-existing data condition: no operation here introduces or removes
// them.
package graph

import (
	"sort"

	"github.com/hfern/tagtask/internal/task"
)

// Index is the per-partition dependency view: a forward mapping from task
// ID to the task and a reverse mapping from task ID to its dependents.
type Index struct {
	tasks      map[int]*task.Task
	dependents map[int][]int
}

// Build constructs the index for a partition.
func Build(p *task.Partition) *Index {
	ix := &Index{
		tasks:      make(map[int]*task.Task, len(p.Tasks)),
		dependents: make(map[int][]int),
	}
	for _, t := range p.Tasks {
		ix.tasks[t.ID] = t
	}
	for _, t := range p.Tasks {
		for _, dep := range t.Dependencies {
			ix.dependents[dep] = append(ix.dependents[dep], t.ID)
		}
	}
	return ix
}

// Resolve returns the task with the given ID.
func (ix *Index) Resolve(id int) (*task.Task, bool) {
	t, ok := ix.tasks[id]
	return t, ok
}

// Has reports whether a task with the given ID exists in the partition.
func (ix *Index) Has(id int) bool {
	_, ok := ix.tasks[id]
	return ok
}

// Dependents returns the sorted IDs of tasks that depend on the given ID.
func (ix *Index) Dependents(id int) []int {
	deps := append([]int(nil), ix.dependents[id]...)
	sort.Ints(deps)
	return deps
}

// DanglingDependencies returns, for the task with the given ID, the
// dependency IDs that would no longer resolve if every task in moving left
// the partition: dependencies that exist here, are not themselves moving,
// and therefore stay behind. These are the cross-tag dependency conflicts;
// dependencies that do not resolve at all are a pre-existing inconsistency
// and are not reported as conflicts.
func (ix *Index) DanglingDependencies(id int, moving map[int]bool) []int {
	t, ok := ix.tasks[id]
	if !ok {
		return nil
	}
	var out []int
	for _, dep := range t.Dependencies {
		if moving[dep] {
			continue
		}
		if ix.Has(dep) {
			out = append(out, dep)
		}
	}
	sort.Ints(out)
	return out
}

// StrandedDependents returns, for the task with the given ID, the IDs of
// tasks that stay in the partition but depend on it. A cross-tag move of
// the task leaves these edges dangling in the source partition.
func (ix *Index) StrandedDependents(id int, moving map[int]bool) []int {
	var out []int
	for _, dependent := range ix.dependents[id] {
		if !moving[dependent] {
			out = append(out, dependent)
		}
	}
	sort.Ints(out)
	return out
}

// Closure expands the given ID set with every dependency reachable from it
// that exists in the partition, transitively. The result includes the
// seeds. Cycles terminate naturally via the visited set.
func (ix *Index) Closure(seeds []int) map[int]bool {
	visited := make(map[int]bool, len(seeds))
	stack := append([]int(nil), seeds...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		t, ok := ix.tasks[id]
		if !ok {
			continue
		}
		for _, dep := range t.Dependencies {
			if !visited[dep] && ix.Has(dep) {
				stack = append(stack, dep)
			}
		}
	}
	return visited
}

// NextID returns the next free task ID: one above the highest existing ID.
// Freed or skipped IDs are never reused.
func (ix *Index) NextID() int {
	max := 0
	for id := range ix.tasks {
		if id > max {
			max = id
		}
	}
	return max + 1
}
