package notify

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "db", "push_subscriptions.jsonl"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func TestStore_Subscribe(t *testing.T) {
	now := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t)

	if _, _, err := s.Subscribe("", "k", "a", now); !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("err = %v", err)
	}
	first, created, err := s.Subscribe("https://push/1", "k", "a", now)
	if err != nil || !created {
		t.Fatalf("Subscribe = %v, %v", created, err)
	}
	again, created, err := s.Subscribe("https://push/1", "k", "a", now)
	if err != nil || created || again.ID != first.ID {
		t.Errorf("duplicate endpoint created a row: %v %v", created, err)
	}
	if _, created, err := s.Subscribe("https://push/1", "k2", "a2", now); err != nil || created {
		t.Errorf("key refresh = %v, %v", created, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	for sub := range s.All() {
		if sub.P256dh != "k2" {
			t.Errorf("keys not refreshed: %+v", sub)
		}
	}
}

func TestStore_SubscribeConcurrent(t *testing.T) {
	now := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t)
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for range 16 {
		wg.Go(func() {
			_, c, err := s.Subscribe("https://push/same", "k", "a", now)
			if err != nil {
				t.Errorf("Subscribe failed: %v", err)
				return
			}
			if c {
				mu.Lock()
				created++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestMessage_WithDefaults(t *testing.T) {
	m := Message{Title: "Hello"}.WithDefaults()
	if m.Title != "Hello" || m.Body != DefaultBody || m.Icon != DefaultIcon || m.URL != DefaultURL {
		t.Errorf("WithDefaults = %+v", m)
	}
}

func TestSender_Broadcast(t *testing.T) {
	now := time.Now()
	store := newTestStore(t)
	for _, ep := range []string{"https://push/ok", "https://push/gone", "https://push/err"} {
		if _, _, err := store.Subscribe(ep, "k", "a", now); err != nil {
			t.Fatal(err)
		}
	}
	sender := NewSender(store, Keys{Public: "pub", Private: "priv"})
	var mu sync.Mutex
	var payloads []string
	sender.send = func(_ context.Context, payload []byte, sub *Subscription) (int, error) {
		mu.Lock()
		payloads = append(payloads, string(payload))
		mu.Unlock()
		switch sub.Endpoint {
		case "https://push/gone":
			return http.StatusGone, nil
		case "https://push/err":
			return 0, errors.New("network down")
		}
		return http.StatusCreated, nil
	}

	res := sender.Broadcast(t.Context(), Message{Title: "T"})
	if res.Sent != 1 || res.Failed != 2 {
		t.Errorf("Result = %+v", res)
	}
	if store.Len() != 2 {
		t.Errorf("gone subscriber not removed, Len = %d", store.Len())
	}
	if len(payloads) != 3 {
		t.Fatalf("got %d sends", len(payloads))
	}
	want := `{"title":"T","body":"New update available!","icon":"/icon-192x192.png","url":"/"}`
	if payloads[0] != want {
		t.Errorf("payload = %s", payloads[0])
	}
}

func TestSender_Disabled(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Subscribe("https://push/1", "k", "a", time.Now()); err != nil {
		t.Fatal(err)
	}
	sender := NewSender(store, Keys{Public: "pub"})
	sender.send = func(context.Context, []byte, *Subscription) (int, error) {
		t.Error("disabled sender delivered a message")
		return 0, nil
	}
	if sender.Enabled() {
		t.Fatal("sender enabled without private key")
	}
	sender.Notify(t.Context(), Message{Title: "x"})
	if res := sender.Broadcast(t.Context(), Message{}); res != (Result{}) {
		t.Errorf("Result = %+v", res)
	}
	var nilSender *Sender
	nilSender.Notify(t.Context(), Message{})
}
