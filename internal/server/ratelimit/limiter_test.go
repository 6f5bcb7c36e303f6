package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()

	for i := range 5 {
		result := l.Allow("ip:1.2.3.4:login")
		if !result.Allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if result.Limit != 5 {
			t.Errorf("expected Limit=5, got %d", result.Limit)
		}
	}
	result := l.Allow("ip:1.2.3.4:login")
	if result.Allowed {
		t.Error("6th request should be rate limited")
	}
	if result.RetryAfter < time.Second {
		t.Errorf("expected RetryAfter >= 1s, got %v", result.RetryAfter)
	}
	if other := l.Allow("ip:5.6.7.8:login"); !other.Allowed {
		t.Error("a different key must have its own bucket")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(60, time.Minute, 10)
	l.Allow("a")
	l.cleanup(time.Now().Add(time.Hour))
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("expected stale bucket to be removed, %d left", n)
	}
	l.Close()
	l.Close()
}

func TestConfig_Match(t *testing.T) {
	c := NewConfig(Limits{LoginPerMin: 5, WritePerMin: 60, ReadPerMin: 6000})
	defer c.Close()

	tests := []struct {
		name   string
		admin  bool
		method string
		path   string
		want   *Tier
	}{
		{"health", false, "GET", "/api/health", nil},
		{"login", false, "POST", LoginPath, c.Login},
		{"logout", false, "GET", LoginPath, c.Read},
		{"public read", false, "GET", "/api/jobs", c.Read},
		{"subscribe", false, "POST", "/api/subscribe", c.Read},
		{"admin write", true, "DELETE", "/api/jobs", c.Write},
		{"admin patch", true, "PATCH", "/api/results", c.Write},
		{"admin read", true, "GET", "/api/coaching/table", c.Read},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Tier
			if tt.admin {
				got = c.MatchAdmin(tt.method, tt.path)
			} else {
				got = c.MatchPublic(tt.method, tt.path)
			}
			if got != tt.want {
				t.Errorf("got tier %v, want %v", got, tt.want)
			}
		})
	}

	var disabled *Config
	if disabled.MatchPublic("GET", "/api/jobs") != nil {
		t.Error("nil config must not limit")
	}
	if NewConfig(Limits{}).Read != nil {
		t.Error("zero budget must disable the tier")
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewResponseWriter(rec, Result{Allowed: false, Limit: 5, Remaining: 0, ResetAt: time.Unix(100, 0), RetryAfter: 12 * time.Second})
	w.WriteHeader(http.StatusTooManyRequests)
	h := rec.Header()
	if h.Get("X-RateLimit-Limit") != "5" || h.Get("X-RateLimit-Reset") != "100" || h.Get("Retry-After") != "12" {
		t.Errorf("headers = %v", h)
	}
	if got := BuildKey(ScopeAdmin, "root", "write"); got != "admin:root:write" {
		t.Errorf("BuildKey = %q", got)
	}
}
