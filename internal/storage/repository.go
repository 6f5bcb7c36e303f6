// Coordinates access to the record document behind a single lock.

// Package storage persists the record document and the coaching side table.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/sarkari/portal/internal/record"
)

var (
	// ErrNotFound is returned when a record id is absent from its collection.
	ErrNotFound = errors.New("record not found")
	// ErrCorrupt wraps read or parse failures of an existing store.
	ErrCorrupt = errors.New("store is unreadable")
)

// Backend reads and writes whole snapshots. A store that does not exist yet
// must read as an empty document or table, not as an error.
type Backend interface {
	LoadDocument(ctx context.Context) (*record.Document, error)
	SaveDocument(ctx context.Context, doc *record.Document) error
	LoadCoaching(ctx context.Context) (*record.CoachingTable, error)
	SaveCoaching(ctx context.Context, table *record.CoachingTable) error
	Close() error
}

// Repository is the record store seen by the content services, the detail
// projector and the listings.
type Repository interface {
	// List returns a copy of every record of kind k in stored order.
	List(ctx context.Context, k record.Kind) ([]record.Record, error)
	// Get returns a copy of the record of kind k with the given id.
	Get(ctx context.Context, k record.Kind, id string) (record.Record, error)
	// Resolve finds the kind holding id and returns the record.
	Resolve(ctx context.Context, id string) (record.Kind, record.Record, error)
	// Snapshot returns a deep copy of the whole document.
	Snapshot(ctx context.Context) (*record.Document, error)
	// Coaching returns the coaching side table.
	Coaching(ctx context.Context) (*record.CoachingTable, error)
	// Update runs fn under the write lock and persists what fn changed. No
	// change is saved when fn returns an error.
	Update(ctx context.Context, fn func(tx *Tx) error) error
}

// Store implements Repository over a Backend. All writes are serialized by
// one mutex so a load-mutate-save cycle never interleaves with another.
type Store struct {
	mu      sync.RWMutex
	backend Backend
}

// NewStore returns a Store persisting through backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// List implements Repository.
func (s *Store) List(ctx context.Context, k record.Kind) ([]record.Record, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rows := doc.Rows(k)
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Get implements Repository.
func (s *Store) Get(ctx context.Context, k record.Kind, id string) (record.Record, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_, r := doc.Find(k, id)
	if r == nil {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// Resolve implements Repository.
//
// The id prefix selects the collection directly. Ids without a known prefix
// are looked up in every collection in record.ResolveOrder.
func (s *Store) Resolve(ctx context.Context, id string) (record.Kind, record.Record, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return 0, nil, err
	}
	if k, ok := record.KindOf(id); ok {
		if _, r := doc.Find(k, id); r != nil {
			return k, r.Clone(), nil
		}
	}
	for _, k := range record.ResolveOrder() {
		if _, r := doc.Find(k, id); r != nil {
			return k, r.Clone(), nil
		}
	}
	return 0, nil, ErrNotFound
}

// Snapshot implements Repository.
func (s *Store) Snapshot(ctx context.Context) (*record.Document, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Coaching implements Repository.
func (s *Store) Coaching(ctx context.Context) (*record.CoachingTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.backend.LoadCoaching(ctx)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return t, nil
}

// Update implements Repository.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.backend.LoadDocument(ctx)
	if err != nil {
		return errors.Join(ErrCorrupt, err)
	}
	tx := &Tx{ctx: ctx, backend: s.backend, doc: doc}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.docDirty {
		if err := s.backend.SaveDocument(ctx, tx.doc); err != nil {
			return err
		}
	}
	if tx.coaching != nil && tx.coachingDirty {
		if err := s.backend.SaveCoaching(ctx, tx.coaching); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) load(ctx context.Context) (*record.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.backend.LoadDocument(ctx)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return doc, nil
}

// Tx is the mutable view handed to Repository.Update callbacks.
type Tx struct {
	ctx     context.Context
	backend Backend
	doc     *record.Document

	coaching      *record.CoachingTable
	docDirty      bool
	coachingDirty bool
}

// Rows returns the records of kind k. Callers must not modify them in place;
// use Replace instead.
func (tx *Tx) Rows(k record.Kind) []record.Record {
	return tx.doc.Rows(k)
}

// Find returns the stored record of kind k with the given id, or nil.
func (tx *Tx) Find(k record.Kind, id string) record.Record {
	_, r := tx.doc.Find(k, id)
	return r.Clone()
}

// NextID allocates the next id of kind k.
func (tx *Tx) NextID(k record.Kind) string {
	return record.NextID(k, tx.doc.Rows(k))
}

// Insert adds r to kind k, at the head when head is true.
func (tx *Tx) Insert(k record.Kind, r record.Record, head bool) {
	tx.doc.Insert(k, r, head)
	tx.docDirty = true
}

// Replace overwrites the record of kind k with id r.ID(). It returns
// ErrNotFound when no such record exists.
func (tx *Tx) Replace(k record.Kind, r record.Record) error {
	i, _ := tx.doc.Find(k, r.ID())
	if i < 0 {
		return ErrNotFound
	}
	tx.doc.Rows(k)[i] = r
	tx.docDirty = true
	return nil
}

// Delete removes the records of kind k with the given id. It returns
// ErrNotFound when nothing was removed.
func (tx *Tx) Delete(k record.Kind, id string) error {
	if tx.doc.Remove(k, id) == 0 {
		return ErrNotFound
	}
	tx.docDirty = true
	return nil
}

// Coaching loads the side table on first use. The table is saved when the
// transaction commits.
func (tx *Tx) Coaching() (*record.CoachingTable, error) {
	if tx.coaching == nil {
		t, err := tx.backend.LoadCoaching(tx.ctx)
		if err != nil {
			return nil, errors.Join(ErrCorrupt, err)
		}
		tx.coaching = t
	}
	tx.coachingDirty = true
	return tx.coaching, nil
}
