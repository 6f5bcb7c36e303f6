package reqctx

import (
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote ipv4", "10.1.2.3:5555", nil, "10.1.2.3"},
		{"remote ipv6", "[::1]:8080", nil, "::1"},
		{"no port", "10.1.2.3", nil, "10.1.2.3"},
		{"forwarded chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"forwarded single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": " 203.0.113.8 "}, "203.0.113.8"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextValues(t *testing.T) {
	ctx := t.Context()
	if ClientIP(ctx) != "" || UserAgent(ctx) != "" || CountryCode(ctx) != "" || Admin(ctx) != "" {
		t.Fatal("empty context must yield empty values")
	}
	ctx = WithClientIP(ctx, "1.2.3.4")
	ctx = WithUserAgent(ctx, "curl")
	ctx = WithCountryCode(ctx, "IN")
	ctx = WithAdmin(ctx, "root")
	if ClientIP(ctx) != "1.2.3.4" || UserAgent(ctx) != "curl" || CountryCode(ctx) != "IN" || Admin(ctx) != "root" {
		t.Error("values were not round tripped through the context")
	}
}
