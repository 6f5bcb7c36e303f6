// Defines shared service dependencies for handlers.

package handlers

import (
	"github.com/sarkari/portal/internal/content"
	"github.com/sarkari/portal/internal/detail"
	"github.com/sarkari/portal/internal/listing"
	"github.com/sarkari/portal/internal/notify"
	"github.com/sarkari/portal/internal/storage"
)

// Services holds all service dependencies for handlers.
type Services struct {
	Repo          storage.Repository
	Content       *content.Service
	Detail        *detail.Projector
	Listing       *listing.Service
	Subscriptions *notify.Store
	Sender        *notify.Sender // may be disabled
}

// Config holds configuration values needed by handlers.
type Config struct {
	JWTSecret []byte
	Admin     storage.AdminConfig
	Version   string
	Quotas    storage.ServerQuotas
	Limits    storage.RateLimits
}
