package content

import (
	"context"
	"log/slog"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

var deprecatedJobFields = []string{"importantLinkApply", "importantLinkNotification", "importantLinkOfficial"}

// SaveJob creates or updates a job.
//
// A job whose id is found is updated in place: all post slots are rewritten
// from the request and the other supplied fields are merged. A job whose id
// is unknown is inserted as given. Without an id the next jobs_N is
// allocated. The coaching entry of the saved title is rebuilt every time.
func (s *Service) SaveJob(ctx context.Context, in record.Record) (SaveResult, error) {
	job := in.Clone()
	if job == nil {
		job = record.Record{}
	}
	if name, ok := job["jobName"]; ok {
		if name != "" {
			job[record.FieldTitle] = name
		}
		delete(job, "jobName")
	}
	for _, f := range deprecatedJobFields {
		delete(job, f)
	}
	if job["category"] == "Sate Gov" {
		job["category"] = "state%20gov"
	}
	job[record.FieldDate] = record.NormalizeDate(job.Date(), s.now())
	prefixFees(job)

	var res SaveResult
	err := s.repo.Update(ctx, func(tx *storage.Tx) error {
		id := job.ID()
		if id == "" {
			job[record.FieldID] = tx.NextID(record.Job)
			tx.Insert(record.Job, job, true)
			res = SaveResult{Record: job, Created: true}
		} else if stored := tx.Find(record.Job, id); stored != nil {
			record.CopyPostSlots(stored, job)
			stored.Merge(job)
			if err := tx.Replace(record.Job, stored); err != nil {
				return err
			}
			res = SaveResult{Record: stored}
		} else {
			tx.Insert(record.Job, job, true)
			res = SaveResult{Record: job, Created: true}
		}
		return linkCoaching(tx, res.Record.Title(), res.Record)
	})
	if err != nil {
		return SaveResult{}, err
	}
	if res.Created {
		s.announce(ctx, record.Job, res.Record)
	}
	return SaveResult{Record: res.Record.Clone(), Created: res.Created}, nil
}

// DeleteJob removes a job and the coaching entry matching its title.
// Children referencing the job are kept.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return s.repo.Update(ctx, func(tx *storage.Tx) error {
		job := tx.Find(record.Job, id)
		if err := tx.Delete(record.Job, id); err != nil {
			return err
		}
		removed, err := unlinkCoaching(tx, job.Title())
		if err != nil {
			return err
		}
		if removed {
			slog.DebugContext(ctx, "Removed coaching entry", "job", id, "title", job.Title())
		}
		return nil
	})
}
