package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultTag is the partition name assigned to legacy single-list documents
// on load.
const DefaultTag = "master"

// currentTagKey is the reserved top-level key carrying the active-tag
// marker. A partition cannot use this name.
const currentTagKey = "currentTag"

// Document is the whole persisted store: a mapping from tag name to
// partition, plus an optional marker naming the active tag for callers
// that do not specify one.
//
// Two on-disk shapes are accepted on read:
//
//	canonical: { "<tag>": { "tasks": [...], "metadata": {...} }, "currentTag": "<tag>" }
//	legacy:    { "tasks": [...] }
//
// A legacy document is normalized into a single partition named DefaultTag.
// Save always emits the canonical shape.
type Document struct {
	Tags       map[string]*Partition
	CurrentTag string
}

// NewDocument returns an empty document with a single empty default tag.
func NewDocument() *Document {
	return &Document{
		Tags:       map[string]*Partition{DefaultTag: {Tasks: []*Task{}}},
		CurrentTag: DefaultTag,
	}
}

// Tag returns the partition for the given name, or nil.
func (d *Document) Tag(name string) *Partition {
	return d.Tags[name]
}

// TagNames returns the tag names in sorted order.
func (d *Document) TagNames() []string {
	names := make([]string, 0, len(d.Tags))
	for name := range d.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveTag resolves the partition tag-naive callers should operate on:
// the currentTag marker when set and present, DefaultTag otherwise.
func (d *Document) ActiveTag() string {
	if d.CurrentTag != "" {
		if _, ok := d.Tags[d.CurrentTag]; ok {
			return d.CurrentTag
		}
	}
	return DefaultTag
}

// Validate checks every partition in the document.
func (d *Document) Validate() error {
	for name, p := range d.Tags {
		if name == currentTagKey {
			return fmt.Errorf("tag name %q is reserved", name)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}
	return nil
}

// MarshalJSON emits the canonical multi-tag shape. Tag keys are sorted by
// the JSON encoder, so output is deterministic.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Tags)+1)
	for name, p := range d.Tags {
		if name == currentTagKey {
			return nil, fmt.Errorf("tag name %q is reserved", name)
		}
		out[name] = p
	}
	if d.CurrentTag != "" {
		out[currentTagKey] = d.CurrentTag
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both the canonical and the legacy shape. The shape
// decision is made exactly once here; nothing downstream branches on it.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Legacy shape: a top-level "tasks" key holding an array means the whole
	// object is one unwrapped partition. A tag legitimately named "tasks"
	// holds an object, not an array, so the two shapes cannot collide.
	if tasksRaw, ok := raw["tasks"]; ok && isJSONArray(tasksRaw) {
		var p Partition
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		normalizePartition(&p)
		d.Tags = map[string]*Partition{DefaultTag: &p}
		d.CurrentTag = DefaultTag
		return nil
	}

	d.Tags = make(map[string]*Partition, len(raw))
	d.CurrentTag = ""
	for key, val := range raw {
		if key == currentTagKey {
			if err := json.Unmarshal(val, &d.CurrentTag); err != nil {
				return fmt.Errorf("invalid %s marker: %w", currentTagKey, err)
			}
			continue
		}
		var p Partition
		if err := json.Unmarshal(val, &p); err != nil {
			return fmt.Errorf("tag %q: %w", key, err)
		}
		normalizePartition(&p)
		d.Tags[key] = &p
	}
	return nil
}

func normalizePartition(p *Partition) {
	if p.Tasks == nil {
		p.Tasks = []*Task{}
	}
	for _, t := range p.Tasks {
		t.SetDefaults()
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
