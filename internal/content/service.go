// Package content implements the write rules of every record collection:
// id allocation, date normalization, the coaching linkage of jobs and the
// notifications emitted on creation.
package content

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sarkari/portal/internal/notify"
	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// Service mutates the record store.
type Service struct {
	repo storage.Repository
	sink notify.Sink
	now  func() time.Time
}

// New returns a Service. A nil sink drops notifications and a nil now uses
// time.Now.
func New(repo storage.Repository, sink notify.Sink, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, sink: sink, now: now}
}

// SaveResult is the outcome of a create-or-update.
type SaveResult struct {
	Record  record.Record
	Created bool
}

// List returns the records of kind k. For child kinds a non-empty jobID
// keeps only the children of that job.
func (s *Service) List(ctx context.Context, k record.Kind, jobID string) ([]record.Record, error) {
	rows, err := s.repo.List(ctx, k)
	if err != nil {
		return nil, err
	}
	if jobID == "" || !k.IsChild() {
		return rows, nil
	}
	return slices.DeleteFunc(rows, func(r record.Record) bool { return r.JobID() != jobID }), nil
}

// Delete removes the record of kind k with id. Deleting a job also unlinks
// its coaching entry.
func (s *Service) Delete(ctx context.Context, k record.Kind, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if k == record.Job {
		return s.DeleteJob(ctx, id)
	}
	return s.repo.Update(ctx, func(tx *storage.Tx) error {
		return tx.Delete(k, id)
	})
}

func (s *Service) today() string {
	return record.FormatDate(s.now())
}

// announce emits the creation notice of kind k, if it has one.
func (s *Service) announce(ctx context.Context, k record.Kind, r record.Record) {
	n, ok := notices[k]
	if !ok || s.sink == nil {
		return
	}
	title := r.Title()
	if title == "" {
		title = n.fallback
	}
	s.sink.Notify(ctx, notify.Message{
		Title: n.title,
		Body:  fmt.Sprintf("%s has been added. Check it now!", title),
		URL:   "/",
	})
}

var notices = map[record.Kind]struct{ title, fallback string }{
	record.Job:         {"New Sarkari Job Posted!", "A new job"},
	record.AdmitCard:   {"New Admit Card Posted!", "A new admit card"},
	record.Yojana:      {"New Sarkari Yojana Posted!", "A new yojana"},
	record.Internship:  {"New Internship Posted!", "A new internship"},
	record.Scholarship: {"New Scholarship Posted!", "A new scholarship"},
}

var feeFields = []string{"feeGeneral", "feeSCST", "feeOBC"}

// prefixFees gives every non-empty fee field exactly one leading rupee sign.
func prefixFees(r record.Record) {
	for _, f := range feeFields {
		if v := r[f]; v != "" {
			r[f] = "₹" + strings.TrimLeft(v, "₹")
		}
	}
}
