package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepo(t *testing.T) {
	t.Parallel()

	t.Run("Init", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if _, err := Open(dir, "Test", "test@example.com"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
			t.Errorf(".git not created: %v", err)
		}
		// Reopening an existing repository must not fail.
		if _, err := Open(dir, "Test", "test@example.com"); err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
	})

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		ctx := t.Context()
		r, err := Open(dir, "Test", "test@example.com")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := r.Commit(ctx, "POST /api/jobs", "data.json", "missing.json"); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		// Unchanged tree makes no commit.
		if err := r.Commit(ctx, "POST /api/jobs", "data.json"); err != nil {
			t.Fatalf("second Commit failed: %v", err)
		}
		h, err := r.History(ctx, 10)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(h) != 1 {
			t.Fatalf("got %d commits, want 1", len(h))
		}
		if h[0].Message != "POST /api/jobs" || h[0].Author != "Test" {
			t.Errorf("unexpected commit %+v", h[0])
		}
	})

	t.Run("NothingToStage", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		r, err := Open(dir, "Test", "test@example.com")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := r.Commit(t.Context(), "noop", "absent.json"); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		h, err := r.History(t.Context(), 0)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(h) != 0 {
			t.Errorf("got %d commits, want 0", len(h))
		}
	})
}
