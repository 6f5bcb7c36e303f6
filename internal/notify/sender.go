// Delivers web push notifications to every stored subscriber.

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Message is the payload shown by the browser.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	URL   string `json:"url"`
}

// Defaults used by broadcasts when a field is empty.
const (
	DefaultTitle = "Sarkari Results Update"
	DefaultBody  = "New update available!"
	DefaultIcon  = "/icon-192x192.png"
	DefaultURL   = "/"
)

// WithDefaults fills empty fields.
func (m Message) WithDefaults() Message {
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Body == "" {
		m.Body = DefaultBody
	}
	if m.Icon == "" {
		m.Icon = DefaultIcon
	}
	if m.URL == "" {
		m.URL = DefaultURL
	}
	return m
}

// Sink accepts notifications without blocking the caller.
type Sink interface {
	Notify(ctx context.Context, msg Message)
}

// Keys is the VAPID key pair and contact used to sign pushes.
type Keys struct {
	Public     string
	Private    string
	Subscriber string
}

// Result counts deliveries of one broadcast.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// sendFunc delivers payload to sub and returns the push service status.
type sendFunc func(ctx context.Context, payload []byte, sub *Subscription) (int, error)

// Sender pushes messages to the subscribers of a Store.
type Sender struct {
	store *Store
	keys  Keys
	send  sendFunc
}

// NewSender returns a Sender. With an incomplete key pair the sender is
// disabled and every message is dropped.
func NewSender(store *Store, keys Keys) *Sender {
	s := &Sender{store: store, keys: keys}
	s.send = s.webpush
	return s
}

// Enabled reports whether messages are delivered.
func (s *Sender) Enabled() bool {
	return s != nil && s.store != nil && s.keys.Public != "" && s.keys.Private != ""
}

// Notify implements Sink. Delivery happens in the background and failures
// are only logged.
func (s *Sender) Notify(ctx context.Context, msg Message) {
	if !s.Enabled() {
		slog.DebugContext(ctx, "Push disabled, dropping notification", "title", msg.Title)
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		r := s.Broadcast(ctx, msg)
		slog.InfoContext(ctx, "Push notification sent", "title", msg.Title, "sent", r.Sent, "failed", r.Failed)
	}()
}

// Broadcast delivers msg to every subscriber and waits for all deliveries.
// Subscribers whose push service answers 410 Gone are removed.
func (s *Sender) Broadcast(ctx context.Context, msg Message) Result {
	if !s.Enabled() {
		slog.DebugContext(ctx, "Push disabled, dropping broadcast", "title", msg.Title)
		return Result{}
	}
	payload, err := json.Marshal(msg.WithDefaults())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode push payload", "err", err)
		return Result{}
	}
	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)
	for sub := range s.store.All() {
		wg.Go(func() {
			status, err := s.send(ctx, payload, sub)
			ok := err == nil && status < 400
			if err != nil {
				slog.ErrorContext(ctx, "Web push send failed", "err", err, "endpoint", sub.Endpoint)
			} else if status == http.StatusGone {
				if err := s.store.Delete(sub.ID); err != nil {
					slog.ErrorContext(ctx, "Failed to delete expired push subscription", "err", err, "sub_id", sub.ID)
				}
			} else if !ok {
				slog.WarnContext(ctx, "Web push rejected", "status", status, "endpoint", sub.Endpoint)
			}
			mu.Lock()
			if ok {
				res.Sent++
			} else {
				res.Failed++
			}
			mu.Unlock()
		})
	}
	wg.Wait()
	return res
}

func (s *Sender) webpush(ctx context.Context, payload []byte, sub *Subscription) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      s.keys.Subscriber,
		VAPIDPublicKey:  s.keys.Public,
		VAPIDPrivateKey: s.keys.Private,
		TTL:             86400,
	})
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
