package dto

import (
	"encoding/json"
	"net/http"

	"github.com/sarkari/portal/internal/listing"
	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage/git"
)

// --- Common Responses ---

// OkResponse is a simple success response.
type OkResponse struct {
	Success bool `json:"success"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// --- Record Responses ---

// ListRecordsResponse is a whole collection keyed by Key, e.g.
// {"jobs":[...]}.
type ListRecordsResponse struct {
	Key   string
	Items []record.Record
}

// MarshalJSON implements json.Marshaler.
func (r *ListRecordsResponse) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []record.Record{}
	}
	return json.Marshal(map[string][]record.Record{r.Key: items})
}

// SaveRecordResponse is the outcome of a create or update, with the record
// under Noun, e.g. {"success":true,"job":{...},"created":true}.
type SaveRecordResponse struct {
	Noun    string
	Record  record.Record
	Created bool
	Updated bool
}

// MarshalJSON implements json.Marshaler.
func (r *SaveRecordResponse) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"success": true,
		"id":      r.Record.ID(),
		r.Noun:    r.Record,
	}
	if r.Created {
		m["created"] = true
	}
	if r.Updated {
		m["updated"] = true
	}
	return json.Marshal(m)
}

// --- Listing Responses ---

// SearchResponse lists the best title matches of a query.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []listing.Item `json:"results"`
}

// --- Coaching Responses ---

// CoachingResponse lists the institutes linked to a title.
type CoachingResponse struct {
	Title      string            `json:"title"`
	Institutes []record.Coaching `json:"institutes"`
}

// HistoryResponse lists data directory commits, newest first.
type HistoryResponse struct {
	Commits []git.Commit `json:"commits"`
}

// --- Auth Responses ---

// LoginResponse is returned on a successful admin login. The session token
// travels in the cookie only.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`

	cookie *http.Cookie
}

// SetCookie attaches the cookie to send with the response.
func (r *LoginResponse) SetCookie(c *http.Cookie) {
	r.cookie = c
}

// Cookies returns the cookies to send with the response.
func (r *LoginResponse) Cookies() []*http.Cookie {
	if r.cookie == nil {
		return nil
	}
	return []*http.Cookie{r.cookie}
}

// --- Push Responses ---

// SubscribeResponse acknowledges a push subscription.
type SubscribeResponse struct {
	Success bool `json:"success"`
}

// HTTPStatus is 201 whether the subscription is new or not.
func (r *SubscribeResponse) HTTPStatus() int {
	return http.StatusCreated
}

// NotifyResponse reports a broadcast.
type NotifyResponse struct {
	Success bool `json:"success"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
}
