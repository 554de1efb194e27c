package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/scan"
)

func TestWatcherScansImmediately(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("ssn: 123-45-6789\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(chan *scan.Result, 8)
	w := New(scan.NewService(), zap.NewNop().Sugar(), scan.PathRequest{Path: dir, Recursive: true}, 50*time.Millisecond, func(r *scan.Result) {
		results <- r
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case r := <-results:
		if r.Eligibility != eligibility.StatusConditional {
			t.Errorf("eligibility = %v, want %v", r.Eligibility, eligibility.StatusConditional)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial scan result")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherRescansOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("clean\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := make(chan *scan.Result, 8)
	w := New(scan.NewService(), zap.NewNop().Sugar(), scan.PathRequest{Path: dir, Recursive: true}, 50*time.Millisecond, func(r *scan.Result) {
		results <- r
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Initial scan of the clean tree.
	select {
	case r := <-results:
		if len(r.Findings) != 0 {
			t.Fatalf("initial findings = %d, want 0", len(r.Findings))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial scan result")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("ssn: 123-45-6789\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if len(r.Findings) > 0 {
				return
			}
		case <-deadline:
			t.Fatal("rescan never picked up the new file")
		}
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a/b/c.txt", false},
		{"a/.git/config", true},
		{".hidden/file", true},
		{"a/b/.env", true},
		{".", false},
	}
	for _, tt := range tests {
		if got := isHidden(tt.path); got != tt.want {
			t.Errorf("isHidden(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
