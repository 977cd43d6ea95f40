package watcher

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func quietConfig(debounce time.Duration) *Config {
	return &Config{
		DebounceInterval: debounce,
		Logger:           log.New(io.Discard, "", 0),
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", func() {}, nil); err == nil {
		t.Error("New() with empty path expected error")
	}
	if _, err := New("/tmp/tasks.json", nil, nil); err == nil {
		t.Error("New() with nil callback expected error")
	}
}

func TestNew_DefaultsZeroDebounce(t *testing.T) {
	w, err := New("/tmp/tasks.json", func() {}, &Config{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()
	if w.config.DebounceInterval <= 0 {
		t.Error("zero debounce interval was not defaulted")
	}
}

func TestWatcher_FiresOnAtomicRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := New(path, func() { fired.Add(1) }, quietConfig(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watch a moment to attach, then commit the way the store
	// does: temp file plus rename.
	time.Sleep(100 * time.Millisecond)
	tmp := filepath.Join(dir, ".tasks.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"x": 1}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("callback never fired after rewrite")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start() returned error on shutdown: %v", err)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := New(path, func() { fired.Add(1) }, quietConfig(150*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{"rev": 1}`+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("callback fired %d times for one burst, want 1", got)
	}

	cancel()
	<-done
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := New(path, func() { fired.Add(1) }, quietConfig(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("callback fired %d times for an unrelated file, want 0", got)
	}

	cancel()
	<-done
}
