// Package export renders documents and partitions for external
// consumption.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hfern/tagtask/internal/task"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or yaml)", s)
}

// Document writes the whole document in its canonical shape.
func Document(w io.Writer, format Format, doc *task.Document) error {
	return write(w, format, doc)
}

// Partition writes a single tag's partition.
func Partition(w io.Writer, format Format, p *task.Partition) error {
	return write(w, format, p)
}

// write encodes via the canonical JSON representation so both formats
// agree on field names and the legacy/tagged shape handling.
func write(w io.Writer, format Format, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	switch format {
	case FormatJSON:
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil

	case FormatYAML:
		var tree interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("failed to re-read export: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", format)
}
