// Manages web push subscriptions persisted in a JSONL table.

// Package notify stores push subscribers and delivers notifications to them.
package notify

import (
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/maruel/ksid"

	"github.com/sarkari/portal/internal/jsonldb"
)

var (
	errSubIDRequired       = errors.New("subscription id is required")
	errSubEndpointRequired = errors.New("subscription endpoint is required")

	// ErrMissingEndpoint is returned by Subscribe when the endpoint is empty.
	ErrMissingEndpoint = errors.New("missing subscription endpoint")
)

// Subscription is one browser push endpoint.
type Subscription struct {
	ID       ksid.ID   `json:"id"`
	Endpoint string    `json:"endpoint" jsonschema:"description=Push service URL"`
	P256dh   string    `json:"p256dh"`
	Auth     string    `json:"auth"`
	Created  time.Time `json:"created"`
}

// Clone returns a copy.
func (s *Subscription) Clone() *Subscription {
	c := *s
	return &c
}

// GetID returns the subscription's ID.
func (s *Subscription) GetID() ksid.ID {
	return s.ID
}

// Validate checks required fields.
func (s *Subscription) Validate() error {
	if s.ID.IsZero() {
		return errSubIDRequired
	}
	if s.Endpoint == "" {
		return errSubEndpointRequired
	}
	return nil
}

// Store persists subscriptions, deduplicated by endpoint.
type Store struct {
	mu         sync.Mutex // serializes the endpoint check with the write
	table      *jsonldb.Table[*Subscription]
	byEndpoint *jsonldb.UniqueIndex[string, *Subscription]
}

// NewStore opens the subscription table at path.
func NewStore(path string) (*Store, error) {
	table, err := jsonldb.NewTable[*Subscription](path)
	if err != nil {
		return nil, err
	}
	return &Store{
		table:      table,
		byEndpoint: jsonldb.NewUniqueIndex(table, func(s *Subscription) string { return s.Endpoint }),
	}, nil
}

// Subscribe registers endpoint. A known endpoint is kept, with its keys
// refreshed when they changed. It reports whether a new row was created.
func (s *Store) Subscribe(endpoint, p256dh, auth string, now time.Time) (*Subscription, bool, error) {
	if endpoint == "" {
		return nil, false, ErrMissingEndpoint
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev := s.byEndpoint.Get(endpoint); prev != nil {
		if prev.P256dh == p256dh && prev.Auth == auth {
			return prev, false, nil
		}
		upd := prev.Clone()
		upd.P256dh = p256dh
		upd.Auth = auth
		if err := s.table.Update(upd); err != nil {
			return nil, false, err
		}
		return upd, false, nil
	}
	sub := &Subscription{ID: ksid.NewID(), Endpoint: endpoint, P256dh: p256dh, Auth: auth, Created: now}
	if err := s.table.Append(sub); err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// Delete removes a subscription.
func (s *Store) Delete(id ksid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.table.Delete(id)
	return err
}

// All iterates over every subscription.
func (s *Store) All() iter.Seq[*Subscription] {
	return s.table.All()
}

// Len returns the number of subscriptions.
func (s *Store) Len() int {
	return s.table.Len()
}
