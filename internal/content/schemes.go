// Implements the self-contained collections: yojanas, internships and
// scholarship tests.

package content

import (
	"context"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// SaveYojana creates or updates a Sarkari Yojana.
//
// When posts is non-nil it replaces every post slot, blanking the unused
// ones. With an id the request is merged over the stored record, and an
// unknown id is ErrNotFound. Without an id the next yojana-N and today's
// date are assigned.
func (s *Service) SaveYojana(ctx context.Context, in record.Record, posts []record.Post) (SaveResult, error) {
	y := in.Clone()
	if y == nil {
		y = record.Record{}
	}
	if posts != nil {
		record.SetPosts(y, posts)
	}
	var res SaveResult
	err := s.repo.Update(ctx, func(tx *storage.Tx) error {
		if id := y.ID(); id != "" {
			stored := tx.Find(record.Yojana, id)
			if stored == nil {
				return ErrNotFound
			}
			stored.Merge(y)
			res = SaveResult{Record: stored}
			return tx.Replace(record.Yojana, stored)
		}
		y[record.FieldID] = tx.NextID(record.Yojana)
		y[record.FieldDate] = s.today()
		tx.Insert(record.Yojana, y, true)
		res = SaveResult{Record: y, Created: true}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}
	if res.Created {
		s.announce(ctx, record.Yojana, res.Record)
	}
	return SaveResult{Record: res.Record.Clone(), Created: res.Created}, nil
}

// SaveInternship creates or updates an internship.
func (s *Service) SaveInternship(ctx context.Context, in record.Record) (SaveResult, error) {
	return s.saveStandalone(ctx, record.Internship, in)
}

// SaveScholarship creates or updates a scholarship test. Fee fields get a
// single rupee prefix.
func (s *Service) SaveScholarship(ctx context.Context, in record.Record) (SaveResult, error) {
	r := in.Clone()
	if r != nil {
		prefixFees(r)
	}
	return s.saveStandalone(ctx, record.Scholarship, r)
}

// saveStandalone drops empty fields, then updates the record with the given
// id keeping its stored id and date, or appends it. An unknown id is
// appended as given.
func (s *Service) saveStandalone(ctx context.Context, k record.Kind, in record.Record) (SaveResult, error) {
	r := in.Clone()
	if r == nil {
		r = record.Record{}
	}
	r.DropEmpty()
	var res SaveResult
	err := s.repo.Update(ctx, func(tx *storage.Tx) error {
		id := r.ID()
		if id != "" {
			if stored := tx.Find(k, id); stored != nil {
				date, hasDate := stored[record.FieldDate]
				stored.Merge(r)
				delete(stored, record.FieldDate)
				if hasDate {
					stored[record.FieldDate] = date
				}
				res = SaveResult{Record: stored}
				return tx.Replace(k, stored)
			}
		} else {
			r[record.FieldID] = tx.NextID(k)
			r[record.FieldDate] = s.today()
		}
		if r.Date() == "" {
			r[record.FieldDate] = s.today()
		}
		if _, ok := r[record.FieldTitle]; !ok {
			r[record.FieldTitle] = ""
		}
		tx.Insert(k, r, false)
		res = SaveResult{Record: r, Created: true}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}
	if res.Created {
		s.announce(ctx, k, res.Record)
	}
	return SaveResult{Record: res.Record.Clone(), Created: res.Created}, nil
}
