package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sarkari/portal/internal/record"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	s := NewStore(b)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Update(t *testing.T) {
	ctx := t.Context()
	s := newTestStore(t)

	err := s.Update(ctx, func(tx *Tx) error {
		id := tx.NextID(record.Job)
		tx.Insert(record.Job, record.Record{"id": id, "title": "SSC CGL"}, true)
		tbl, err := tx.Coaching()
		if err != nil {
			return err
		}
		tbl.Set("SSC CGL", []record.Coaching{{Name: "Adda", URL: "https://adda"}})
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	r, err := s.Get(ctx, record.Job, "jobs_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if r.Title() != "SSC CGL" {
		t.Errorf("title = %q", r.Title())
	}
	tbl, err := s.Coaching(ctx)
	if err != nil {
		t.Fatalf("Coaching failed: %v", err)
	}
	if got := tbl.Lookup("ssc cgl"); len(got) != 1 {
		t.Errorf("coaching not saved: %+v", got)
	}

	t.Run("error discards changes", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Update(ctx, func(tx *Tx) error {
			tx.Insert(record.Job, record.Record{"id": "jobs_2"}, true)
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		if _, err := s.Get(ctx, record.Job, "jobs_2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("aborted insert persisted: %v", err)
		}
	})

	t.Run("replace and delete", func(t *testing.T) {
		err := s.Update(ctx, func(tx *Tx) error {
			r := tx.Find(record.Job, "jobs_1")
			r["title"] = "SSC CGL 2025"
			if err := tx.Replace(record.Job, r); err != nil {
				return err
			}
			if err := tx.Replace(record.Job, record.Record{"id": "jobs_9"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Replace unknown = %v", err)
			}
			if err := tx.Delete(record.Result, "result_1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete unknown = %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		r, _ := s.Get(ctx, record.Job, "jobs_1")
		if r.Title() != "SSC CGL 2025" {
			t.Errorf("title = %q", r.Title())
		}
		if err := s.Update(ctx, func(tx *Tx) error { return tx.Delete(record.Job, "jobs_1") }); err != nil {
			t.Fatal(err)
		}
		rows, _ := s.List(ctx, record.Job)
		if len(rows) != 0 {
			t.Errorf("rows = %v", rows)
		}
	})
}

func TestStore_Resolve(t *testing.T) {
	ctx := t.Context()
	s := newTestStore(t)
	err := s.Update(ctx, func(tx *Tx) error {
		tx.Insert(record.Result, record.Record{"id": "result_1", "jobId": "jobs_1"}, true)
		tx.Insert(record.Internship, record.Record{"id": "legacy-7"}, true)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id   string
		want record.Kind
	}{
		{"result_1", record.Result},
		{"legacy-7", record.Internship},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			k, r, err := s.Resolve(ctx, tt.id)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if k != tt.want || r.ID() != tt.id {
				t.Errorf("Resolve = %v, %v", k, r)
			}
		})
	}
	if _, _, err := s.Resolve(ctx, "xyz-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve unknown = %v", err)
	}
}

func TestStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DocumentFile), []byte("["), 0o600); err != nil {
		t.Fatal(err)
	}
	b, _ := NewFileBackend(dir)
	s := NewStore(b)
	if _, err := s.List(t.Context(), record.Job); !errors.Is(err, ErrCorrupt) {
		t.Errorf("List = %v, want ErrCorrupt", err)
	}
	err := s.Update(t.Context(), func(tx *Tx) error {
		t.Error("callback must not run on a corrupt store")
		return nil
	})
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Update = %v, want ErrCorrupt", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, DocumentFile))
	if string(data) != "[" {
		t.Error("corrupt file was overwritten")
	}
}

func TestStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			err := s.Update(ctx, func(tx *Tx) error {
				tx.Insert(record.AnswerKey, record.Record{"id": tx.NextID(record.AnswerKey)}, true)
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()
	rows, err := s.List(ctx, record.AnswerKey)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, r := range rows {
		if seen[r.ID()] {
			t.Errorf("duplicate id %s", r.ID())
		}
		seen[r.ID()] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}
