// Package store persists the tagged task document.
//
// The whole document is read into memory, mutated by the caller, and
// rewritten on every operation. Writes are atomic (temp file plus rename
// in the same directory) and guarded by an optimistic-concurrency check:
// a Snapshot remembers the content checksum observed at load time, and
// Save refuses to overwrite a file whose checksum no longer matches,
// returning ErrConcurrentModification so the caller can re-load and retry.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hfern/tagtask/internal/task"
)

// Snapshot is a document loaded from disk together with the version
// information needed to write it back safely.
type Snapshot struct {
	Doc  *task.Document
	Path string

	// checksum of the raw bytes at load time; empty for a document that
	// did not exist on disk yet.
	checksum string
}

// Load reads and parses the document at path, applying legacy
// normalization transparently. The source file is never modified.
//
// Returns ErrNotFound if the path does not exist and a *ParseError if the
// content is not well-formed.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read task document %s: %w", path, err)
	}

	var doc task.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &Snapshot{
		Doc:      &doc,
		Path:     path,
		checksum: checksumBytes(data),
	}, nil
}

// New returns a snapshot for a document that does not exist on disk yet.
// Save will fail with ErrConcurrentModification if another process creates
// the file first.
func New(path string) *Snapshot {
	return &Snapshot{Doc: task.NewDocument(), Path: path}
}

// Checksum returns the content checksum observed at load time.
func (s *Snapshot) Checksum() string {
	return s.checksum
}

// Save commits the document atomically: the canonical shape is written to
// a temporary file in the target directory and renamed over the original.
// Partial writes are impossible by construction.
//
// Before writing, Save verifies the on-disk content still matches the
// checksum captured at load and returns ErrConcurrentModification
// otherwise. On success the snapshot's checksum is advanced to the new
// content, so a subsequent Save from the same snapshot remains valid.
func (s *Snapshot) Save() error {
	data, err := json.MarshalIndent(s.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task document: %w", err)
	}
	data = append(data, '\n')

	if err := s.assertUnchanged(); err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace task document: %w", err)
	}

	s.checksum = checksumBytes(data)
	return nil
}

// assertUnchanged compares the current on-disk content against the
// checksum captured at load time.
func (s *Snapshot) assertUnchanged() error {
	current, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.checksum == "" {
				return nil // new document, still absent
			}
			return fmt.Errorf("%w: %s was deleted after load", ErrConcurrentModification, s.Path)
		}
		return fmt.Errorf("failed to re-read task document %s: %w", s.Path, err)
	}

	if s.checksum == "" {
		return fmt.Errorf("%w: %s was created after load", ErrConcurrentModification, s.Path)
	}
	if checksumBytes(current) != s.checksum {
		return fmt.Errorf("%w: %s", ErrConcurrentModification, s.Path)
	}
	return nil
}

func checksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
