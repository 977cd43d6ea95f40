package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies a task ("5") or a subtask ("5.2") within one partition.
// Identifiers are parsed into this form once at the boundary; validation
// and execution never re-parse strings.
type Ref struct {
	Parent int
	Sub    int // 0 for a top-level task
}

// ParseRef parses a task or compound subtask identifier.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty task identifier")
	}

	parent, sub := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		parent, sub = s[:i], s[i+1:]
	}

	pid, err := strconv.Atoi(parent)
	if err != nil || pid <= 0 {
		return Ref{}, fmt.Errorf("invalid task identifier %q: id must be a positive integer", s)
	}
	if sub == "" {
		if strings.Contains(s, ".") {
			return Ref{}, fmt.Errorf("invalid subtask identifier %q: missing subtask id", s)
		}
		return Ref{Parent: pid}, nil
	}

	sid, err := strconv.Atoi(sub)
	if err != nil || sid <= 0 {
		return Ref{}, fmt.Errorf("invalid subtask identifier %q: subtask id must be a positive integer", s)
	}
	return Ref{Parent: pid, Sub: sid}, nil
}

// ParseRefs parses a comma-separated list of identifiers.
func ParseRefs(s string) ([]Ref, error) {
	parts := strings.Split(s, ",")
	refs := make([]Ref, 0, len(parts))
	for _, part := range parts {
		ref, err := ParseRef(part)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// IsSubtask reports whether the ref addresses a subtask.
func (r Ref) IsSubtask() bool {
	return r.Sub > 0
}

// String returns the canonical textual form: "5" or "5.2".
func (r Ref) String() string {
	if r.IsSubtask() {
		return fmt.Sprintf("%d.%d", r.Parent, r.Sub)
	}
	return strconv.Itoa(r.Parent)
}
