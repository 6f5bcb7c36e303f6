// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"time"
)

// Scope defines how rate limit keys are determined.
type Scope int

const (
	// ScopeIP uses client IP address as the rate limit key.
	ScopeIP Scope = iota
	// ScopeAdmin uses the authenticated admin username as the rate limit key.
	ScopeAdmin
)

// Tier defines a rate limit tier with its limiter and scope.
type Tier struct {
	Name    string
	Limiter *Limiter
	Scope   Scope
}

// Limits is the per-minute budget of each tier. A zero value disables the
// tier.
type Limits struct {
	LoginPerMin int
	WritePerMin int
	ReadPerMin  int
}

// Config holds the rate limiters of each tier. A nil tier is unlimited.
type Config struct {
	Login *Tier
	Write *Tier
	Read  *Tier
}

// LoginPath is the only endpoint of the login tier.
const LoginPath = "/api/admin-login"

// NewConfig creates the tiers for limits. The login tier allows its whole
// budget as a burst; the other tiers a sixth of it.
func NewConfig(limits Limits) *Config {
	c := &Config{}
	if n := limits.LoginPerMin; n > 0 {
		c.Login = &Tier{Name: "login", Limiter: NewLimiter(n, time.Minute, n), Scope: ScopeIP}
	}
	if n := limits.WritePerMin; n > 0 {
		c.Write = &Tier{Name: "write", Limiter: NewLimiter(n, time.Minute, max(n/6, 1)), Scope: ScopeAdmin}
	}
	if n := limits.ReadPerMin; n > 0 {
		c.Read = &Tier{Name: "read", Limiter: NewLimiter(n, time.Minute, max(n/6, 1)), Scope: ScopeIP}
	}
	return c
}

// MatchPublic returns the tier for a request that carries no admin token.
// Returns nil for paths that should not be rate limited.
func (c *Config) MatchPublic(method, path string) *Tier {
	if c == nil || path == "/api/health" {
		return nil
	}
	if path == LoginPath && method == http.MethodPost {
		return c.Login
	}
	if method == http.MethodGet {
		return c.Read
	}
	// Subscriptions are public writes; they share the read budget per IP.
	if method == http.MethodPost {
		return c.Read
	}
	return nil
}

// MatchAdmin returns the tier for an authenticated admin request.
func (c *Config) MatchAdmin(method, path string) *Tier {
	if c == nil {
		return nil
	}
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return c.Write
	case http.MethodGet:
		return c.Read
	}
	return nil
}

// Close stops all limiter cleanup goroutines.
func (c *Config) Close() {
	if c == nil {
		return
	}
	for _, t := range []*Tier{c.Login, c.Write, c.Read} {
		if t != nil {
			t.Limiter.Close()
		}
	}
}
