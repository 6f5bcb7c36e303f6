// Implements results, answer keys and admit cards: records attached to a job.

package content

import (
	"context"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// CreateChild stores a new child record of kind k at the head of its
// collection. The parent job is referenced by jobId and is not required to
// exist.
//
// Admit cards keep a supplied date after normalization; results and answer
// keys are always dated today.
func (s *Service) CreateChild(ctx context.Context, k record.Kind, in record.Record) (record.Record, error) {
	if !k.IsChild() {
		return nil, errWrongKind
	}
	if in.JobID() == "" {
		return nil, ErrMissingJobID
	}
	r := in.Clone()
	if k == record.AdmitCard {
		r[record.FieldDate] = record.NormalizeDate(r.Date(), s.now())
	} else {
		r[record.FieldDate] = s.today()
	}
	err := s.repo.Update(ctx, func(tx *storage.Tx) error {
		r[record.FieldID] = tx.NextID(k)
		tx.Insert(k, r, true)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, k, r)
	return r.Clone(), nil
}

// PatchChild overwrites the supplied fields of an existing child record.
// Absent fields are preserved and id and jobId never change.
func (s *Service) PatchChild(ctx context.Context, k record.Kind, in record.Record) (record.Record, error) {
	if !k.IsChild() {
		return nil, errWrongKind
	}
	id := in.ID()
	if id == "" {
		return nil, ErrMissingID
	}
	var out record.Record
	err := s.repo.Update(ctx, func(tx *storage.Tx) error {
		stored := tx.Find(k, id)
		if stored == nil {
			return ErrNotFound
		}
		for key, v := range in {
			switch key {
			case record.FieldID, record.FieldJobID:
			case record.FieldDate:
				stored[key] = record.NormalizeDate(v, s.now())
			default:
				stored[key] = v
			}
		}
		out = stored
		return tx.Replace(k, stored)
	})
	if err != nil {
		return nil, err
	}
	return out.Clone(), nil
}
