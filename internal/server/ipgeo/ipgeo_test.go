package ipgeo

import "testing"

func TestCountryCodeLocal(t *testing.T) {
	// Local addresses never reach the MMDB reader, so no database is needed.
	var c *Checker
	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "local"},
		{"::1", "local"},
		{"10.0.0.1", "local"},
		{"192.168.1.1", "local"},
		{"172.16.0.1", "local"},
		{"0.0.0.0", "local"},
		{"169.254.1.1", "local"},
		{"fe80::1", "local"},
		{"203.0.113.9", ""},
		{"not-an-ip", ""},
	}
	for _, tt := range tests {
		if got := c.CountryCode(tt.ip); got != tt.want {
			t.Errorf("CountryCode(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
