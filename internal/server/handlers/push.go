// Handles push subscriptions and admin broadcasts.

package handlers

import (
	"context"
	"time"

	"github.com/sarkari/portal/internal/notify"
	"github.com/sarkari/portal/internal/server/dto"
)

// PushHandler handles web push requests.
type PushHandler struct {
	subs   *notify.Store
	sender *notify.Sender
	now    func() time.Time
}

// NewPushHandler creates a new push handler.
func NewPushHandler(svc *Services, now func() time.Time) *PushHandler {
	if now == nil {
		now = time.Now
	}
	return &PushHandler{subs: svc.Subscriptions, sender: svc.Sender, now: now}
}

// Subscribe stores a browser push subscription.
func (h *PushHandler) Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	if _, _, err := h.subs.Subscribe(req.Endpoint, req.Keys.P256dh, req.Keys.Auth, h.now()); err != nil {
		return nil, apiError(err, "Subscription")
	}
	return &dto.SubscribeResponse{Success: true}, nil
}

// Notify broadcasts a message to every subscriber and waits for delivery.
func (h *PushHandler) Notify(ctx context.Context, req *dto.NotifyRequest) (*dto.NotifyResponse, error) {
	res := h.sender.Broadcast(ctx, notify.Message{Title: req.Title, Body: req.Body, Icon: req.Icon, URL: req.URL})
	return &dto.NotifyResponse{Success: true, Sent: res.Sent, Failed: res.Failed}, nil
}
