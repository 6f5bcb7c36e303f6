package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

type fakePutter struct {
	mu   sync.Mutex
	objs map[string][]byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objs == nil {
		f.objs = map[string][]byte{}
	}
	f.objs[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	b, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	s := storage.NewStore(b)
	err = s.Update(t.Context(), func(tx *storage.Tx) error {
		tx.Insert(record.Job, record.Record{"id": "jobs_1", "title": "SSC CGL"}, true)
		c, err := tx.Coaching()
		if err != nil {
			return err
		}
		c.Set("SSC CGL", []record.Coaching{{Name: "Alpha Academy"}})
		return nil
	})
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	return s
}

func TestKey(t *testing.T) {
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	tests := []struct {
		prefix, want string
	}{
		{"backups", "backups/data-20250203-040506.json"},
		{"", "data-20250203-040506.json"},
		{"a/b/", "a/b/data-20250203-040506.json"},
	}
	for _, tt := range tests {
		if got := Key(tt.prefix, ts); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	fake := &fakePutter{}
	s := NewScheduler(&Uploader{client: fake, bucket: "b", prefix: "backups"}, newTestStore(t), "@every 1h", func() time.Time { return ts })

	key, err := s.RunOnce(t.Context())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if key != "backups/data-20250203-040506.json" {
		t.Errorf("key = %q", key)
	}
	var got struct {
		Document map[string][]map[string]string `json:"document"`
		Coaching map[string]json.RawMessage     `json:"coaching"`
		TakenAt  time.Time                      `json:"takenAt"`
	}
	if err := json.Unmarshal(fake.objs["b/"+key], &got); err != nil {
		t.Fatalf("invalid snapshot: %v", err)
	}
	if jobs := got.Document["jobs"]; len(jobs) != 1 || jobs[0]["id"] != "jobs_1" {
		t.Errorf("document jobs = %v", jobs)
	}
	if _, ok := got.Coaching["SSC CGL"]; !ok {
		t.Errorf("coaching = %v", got.Coaching)
	}
	if !got.TakenAt.Equal(ts) {
		t.Errorf("takenAt = %v", got.TakenAt)
	}

	fake.err = errors.New("bucket gone")
	if _, err := s.RunOnce(t.Context()); err == nil {
		t.Error("expected upload error")
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&Uploader{client: &fakePutter{}}, newTestStore(t), "not a schedule", nil)
	if err := s.Start(t.Context()); err == nil {
		s.Stop()
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestNewUploader_Disabled(t *testing.T) {
	if _, err := NewUploader(t.Context(), &storage.BackupConfig{}); err == nil {
		t.Error("expected an error without a bucket")
	}
}
