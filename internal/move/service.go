package move

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hfern/tagtask/internal/notify"
	"github.com/hfern/tagtask/internal/store"
	"github.com/hfern/tagtask/internal/task"
)

// ServiceConfig holds configuration for the move service.
type ServiceConfig struct {
	// MaxRetries is how many times a move is re-run from load when the
	// document changes underneath it mid-operation.
	MaxRetries int

	// Logger for operation activity.
	Logger *log.Logger

	// Registry receives change notifications after a successful commit.
	// Nil disables notification.
	Registry *notify.Registry

	// Regenerate, when set, rebuilds derived artifacts for an affected
	// partition after a successful commit. Failures are logged, never
	// propagated.
	Regenerate func(tag string, p *task.Partition, opID string) error
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxRetries: 3,
		Logger:     log.New(os.Stderr, "[move] ", log.LstdFlags),
	}
}

// Service runs complete move operations against a document path:
// load, validate, apply, commit, then post-commit hooks.
//
// There is no in-process concurrency: each operation runs to completion
// before the next begins. Cross-process safety comes from the store's
// optimistic concurrency check; a commit that observes a concurrent
// modification is retried from load so validation always runs against the
// document that will actually be rewritten.
type Service struct {
	path   string
	config *ServiceConfig
}

// NewService creates a service for the document at path.
func NewService(path string, config *ServiceConfig) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[move] ", log.LstdFlags)
	}
	return &Service{path: path, config: config}
}

// Move executes the request end to end. Validation errors surface as the
// typed errors of this package; store errors surface unwrapped. Either
// the move is committed in full or the document on disk is untouched.
func (s *Service) Move(req Request) (*Summary, error) {
	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			s.config.Logger.Printf("Document changed during move, retrying (%d/%d)", attempt, s.config.MaxRetries)
		}

		snap, err := store.Load(s.path)
		if err != nil {
			return nil, err
		}

		plan, err := Validate(snap.Doc, req)
		if err != nil {
			return nil, err
		}

		summary := Apply(snap.Doc, plan, time.Now())

		if err := snap.Save(); err != nil {
			if store.IsRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		summary.OperationID = notify.NewEventID()
		s.afterCommit(snap.Doc, plan, summary)
		return summary, nil
	}
	return nil, fmt.Errorf("move abandoned after %d retries: %w", s.config.MaxRetries, lastErr)
}

// afterCommit runs regeneration and notification. Both are best-effort;
// the commit has already succeeded and cannot be rolled back here.
func (s *Service) afterCommit(doc *task.Document, plan *Plan, summary *Summary) {
	tags := []string{plan.SourceTag}
	if plan.CrossTag {
		tags = append(tags, plan.TargetTag)
	}

	for _, tag := range tags {
		p := doc.Tag(tag)
		if p == nil {
			continue
		}
		if s.config.Regenerate != nil {
			if err := s.config.Regenerate(tag, p, summary.OperationID); err != nil {
				s.config.Logger.Printf("Warning: failed to regenerate task files for tag %q: %v", tag, err)
			}
		}
	}

	if s.config.Registry == nil {
		return
	}
	for _, tag := range tags {
		ev := notify.Event{
			ID:   summary.OperationID,
			Kind: notify.KindTasksUpdated,
			Path: s.path,
			Tag:  tag,
			Op:   "move",
		}
		for _, m := range summary.Moved {
			if m.ToTag == tag {
				ev.TaskIDs = append(ev.TaskIDs, m.ID)
			}
		}
		s.config.Registry.Emit(ev)
	}
}
