// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"
	"time"

	"github.com/sarkari/portal/internal/server/handlers"
	"github.com/sarkari/portal/internal/server/ipgeo"
	"github.com/sarkari/portal/internal/server/ratelimit"
	"github.com/sarkari/portal/internal/storage"
	"github.com/sarkari/portal/internal/storage/git"
)

// Config holds the server configuration.
type Config struct {
	ServerConfig *storage.ServerConfig
	Version      string
	IPGeo        *ipgeo.Checker // may be nil
	History      *git.Repo      // may be nil
	// Now is the clock used for tokens and subscriptions; nil is time.Now.
	Now func() time.Time
}

// Router serves the JSON API.
type Router struct {
	mux    *http.ServeMux
	limits *ratelimit.Config
}

// NewRouter creates and configures the HTTP router.
func NewRouter(svc *handlers.Services, cfg *Config) *Router {
	sc := cfg.ServerConfig
	hcfg := &handlers.Config{
		JWTSecret: sc.JWTSecret,
		Admin:     sc.Admin,
		Version:   cfg.Version,
		Quotas:    sc.Quotas,
		Limits:    sc.RateLimits,
	}
	limits := ratelimit.NewConfig(ratelimit.Limits{
		LoginPerMin: sc.RateLimits.LoginRatePerMin,
		WritePerMin: sc.RateLimits.WriteRatePerMin,
		ReadPerMin:  sc.RateLimits.ReadRatePerMin,
	})
	authh := handlers.NewAuthHandler(hcfg, cfg.Now)
	e := &env{cfg: hcfg, limits: limits, auth: authh, geo: cfg.IPGeo, history: cfg.History}

	mux := &http.ServeMux{}
	hh := handlers.NewHealthHandler(cfg.Version)
	vh := handlers.NewViewHandler(svc)
	ph := handlers.NewPushHandler(svc, cfg.Now)

	// Health check
	mux.Handle("GET /api/health", Wrap(hh.Health, e))

	// Record collections
	for _, coll := range handlers.Collections {
		rh := handlers.NewRecordHandler(svc.Content, coll)
		base := "/api/" + coll.Path
		mux.Handle("GET "+base, Wrap(rh.List, e))
		mux.Handle("POST "+base, WrapAdmin(rh.Save, e))
		mux.Handle("DELETE "+base, WrapAdmin(rh.Delete, e))
		if coll.Kind.IsChild() {
			mux.Handle("PATCH "+base, WrapAdmin(rh.Patch, e))
		}
	}

	// Public views
	mux.Handle("GET /api/detail/{id}", Wrap(vh.Detail, e))
	mux.Handle("GET /api/category/{name}", Wrap(vh.Category, e))
	mux.Handle("GET /api/sections/{slug}", Wrap(vh.Section, e))
	mux.Handle("GET /api/search", Wrap(vh.Search, e))
	mux.Handle("GET /api/home", Wrap(vh.Home, e))
	mux.Handle("GET /api/coaching", Wrap(vh.Coaching, e))
	mux.Handle("GET /api/coaching/table", WrapAdmin(vh.CoachingTable, e))

	// Change history
	mux.Handle("GET /api/history", WrapAdmin(handlers.NewHistoryHandler(cfg.History).History, e))

	// Auth endpoints
	mux.Handle("POST /api/admin-login", Wrap(authh.Login, e))
	mux.Handle("GET /api/admin-login", Wrap(authh.Logout, e))

	// Push endpoints
	mux.Handle("POST /api/subscribe", Wrap(ph.Subscribe, e))
	mux.Handle("POST /api/notify", WrapAdmin(ph.Notify, e))

	return &Router{mux: mux, limits: limits}
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Close stops the rate limiter cleanup goroutines.
func (rt *Router) Close() error {
	rt.limits.Close()
	return nil
}
