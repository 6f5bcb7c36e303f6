package dto

import (
	"encoding/json"
	"strings"

	"github.com/sarkari/portal/internal/record"
)

// EmptyRequest is used by endpoints that take no input.
type EmptyRequest struct{}

// Validate implements Validatable.
func (r *EmptyRequest) Validate() error { return nil }

// --- Record Requests ---

// ListRecordsRequest lists a collection, optionally restricted to the
// children of one job.
type ListRecordsRequest struct {
	JobID string `query:"jobId"`
}

// Validate implements Validatable.
func (r *ListRecordsRequest) Validate() error { return nil }

// RecordRequest is the free-form body of a create, update or patch.
//
// Scalars are coerced to strings. The only structured field accepted is
// eligibilityPosts, which yojana forms send as a list.
type RecordRequest struct {
	Fields record.Record
	// Posts is nil when eligibilityPosts was absent from the body.
	Posts []record.Post
}

// Validate implements Validatable.
func (r *RecordRequest) Validate() error { return nil }

type postInput struct {
	Name        string `json:"name"`
	PostName    string `json:"postName"`
	Eligibility string `json:"eligibility"`
	AgeLimit    string `json:"ageLimit"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RecordRequest) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Fields); err != nil {
		return err
	}
	var aux struct {
		EligibilityPosts *[]postInput `json:"eligibilityPosts"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.EligibilityPosts == nil {
		return nil
	}
	r.Posts = make([]record.Post, 0, len(*aux.EligibilityPosts))
	for _, p := range *aux.EligibilityPosts {
		name := p.Name
		if name == "" {
			name = p.PostName
		}
		r.Posts = append(r.Posts, record.Post{Name: name, Eligibility: p.Eligibility, AgeLimit: p.AgeLimit})
	}
	return nil
}

// DeleteRecordRequest names the record to delete in the query string or, as
// a fallback, in the body.
type DeleteRecordRequest struct {
	ID string `json:"id" query:"id"`
}

// Validate implements Validatable.
func (r *DeleteRecordRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return MissingField("Missing id")
	}
	return nil
}

// --- Read-only Views ---

// DetailRequest asks for the detail view of any record id.
type DetailRequest struct {
	ID string `path:"id"`
}

// Validate implements Validatable.
func (r *DetailRequest) Validate() error { return nil }

// CategoryRequest asks for a category listing.
type CategoryRequest struct {
	Name string `path:"name"`
}

// Validate implements Validatable.
func (r *CategoryRequest) Validate() error {
	if r.Name == "" {
		return MissingField("Missing category")
	}
	return nil
}

// SectionRequest asks for a section listing.
type SectionRequest struct {
	Slug string `path:"slug"`
}

// Validate implements Validatable.
func (r *SectionRequest) Validate() error { return nil }

// SearchRequest is a free-text title search.
type SearchRequest struct {
	Query string `query:"q"`
}

// Validate implements Validatable.
func (r *SearchRequest) Validate() error { return nil }

// CoachingRequest looks up the institutes linked to a title.
type CoachingRequest struct {
	Title string `query:"title"`
}

// Validate implements Validatable.
func (r *CoachingRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return MissingField("Missing title")
	}
	return nil
}

// HistoryRequest lists the most recent data directory commits.
type HistoryRequest struct {
	Limit int `query:"limit"`
}

// Validate implements Validatable.
func (r *HistoryRequest) Validate() error {
	if r.Limit < 0 {
		return BadRequest("limit must not be negative")
	}
	return nil
}

// --- Auth Requests ---

// LoginRequest carries the admin credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements Validatable.
func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return MissingField("Missing credentials")
	}
	return nil
}

// --- Push Requests ---

// SubscribeRequest is a browser PushSubscription.
type SubscribeRequest struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *json.Number     `json:"expirationTime,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
}

// SubscriptionKeys are the client keys of a PushSubscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Validate implements Validatable.
func (r *SubscribeRequest) Validate() error {
	if r.Endpoint == "" {
		return MissingField("Missing endpoint")
	}
	return nil
}

// NotifyRequest is a broadcast to every subscriber. Empty fields take the
// default message values.
type NotifyRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	URL   string `json:"url"`
}

// Validate implements Validatable.
func (r *NotifyRequest) Validate() error { return nil }
