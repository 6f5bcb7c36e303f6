// Exposes numbered field families (postName1..10, benefit1..10, ...) as ordered lists.

package record

import (
	"strconv"
	"strings"
)

// Slot capacities of the numbered field families.
const (
	MaxPosts          = 10
	MaxCoachings      = 5
	MaxSelectionSteps = 4
	MaxListItems      = 10
	MaxStipends       = 5
)

// Field bases of the numbered families.
const (
	BasePostName        = "postName"
	BasePostEligibility = "postEligibility"
	BasePostAgeLimit    = "postAgeLimit"
	BaseCoachingName    = "coachingName"
	BaseCoachingURL     = "coachingUrl"
	BaseSelection       = "selectionProcess"
	BaseBenefit         = "benefit"
	BaseDocument        = "document"
	BaseCriteria        = "criteria"
	BaseStipend         = "stipend"
	BaseDuration        = "duration"
)

// Slot returns the field name of the i-th (1-based) slot of base.
func Slot(base string, i int) string {
	return base + strconv.Itoa(i)
}

// Post is one eligibility post of a job-like record.
type Post struct {
	// Index is the 1-based slot the post was read from; 0 when not stored.
	Index       int    `json:"-"`
	Name        string `json:"name"`
	Eligibility string `json:"eligibility"`
	AgeLimit    string `json:"ageLimit"`
}

// IsZero reports whether every field of the post is empty.
func (p *Post) IsZero() bool {
	return p.Name == "" && p.Eligibility == "" && p.AgeLimit == ""
}

// Posts returns the non-empty post slots of r in slot order. Gaps are not
// materialized: a record with only slot 5 filled yields a single post.
func Posts(r Record) []Post {
	var out []Post
	for i := 1; i <= MaxPosts; i++ {
		p := Post{
			Index:       i,
			Name:        r.Get(Slot(BasePostName, i)),
			Eligibility: r.Get(Slot(BasePostEligibility, i)),
			AgeLimit:    r.Get(Slot(BasePostAgeLimit, i)),
		}
		if !p.IsZero() {
			out = append(out, p)
		}
	}
	return out
}

// SetPosts writes posts into slots 1..n in order and blanks the remaining
// slots up to MaxPosts. Posts beyond MaxPosts are dropped.
func SetPosts(r Record, posts []Post) {
	for i := 1; i <= MaxPosts; i++ {
		var p Post
		if i <= len(posts) {
			p = posts[i-1]
		}
		r[Slot(BasePostName, i)] = p.Name
		r[Slot(BasePostEligibility, i)] = p.Eligibility
		r[Slot(BasePostAgeLimit, i)] = p.AgeLimit
	}
}

// CopyPostSlots rewrites every post slot of dst from src, blanking the slots
// src leaves unset.
func CopyPostSlots(dst, src Record) {
	for i := 1; i <= MaxPosts; i++ {
		for _, base := range []string{BasePostName, BasePostEligibility, BasePostAgeLimit} {
			dst[Slot(base, i)] = src.Get(Slot(base, i))
		}
	}
}

// Coaching is a recommended coaching institute.
type Coaching struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Coachings returns the coaching slots of r where both name and url are set.
func Coachings(r Record) []Coaching {
	var out []Coaching
	for i := 1; i <= MaxCoachings; i++ {
		name := r.Get(Slot(BaseCoachingName, i))
		url := r.Get(Slot(BaseCoachingURL, i))
		if strings.TrimSpace(name) != "" && strings.TrimSpace(url) != "" {
			out = append(out, Coaching{Name: name, URL: url})
		}
	}
	return out
}

// List returns the non-empty values of base1..baseN in order.
func List(r Record, base string, n int) []string {
	var out []string
	for i := 1; i <= n; i++ {
		if v := r.Get(Slot(base, i)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Stipend is one stipend/duration pair of an internship.
type Stipend struct {
	Amount   string `json:"amount"`
	Duration string `json:"duration"`
}

// Stipends returns the stipend slots of r where either field is set. A
// missing half reads as "Not specified".
func Stipends(r Record) []Stipend {
	var out []Stipend
	for i := 1; i <= MaxStipends; i++ {
		amount := r.Get(Slot(BaseStipend, i))
		duration := r.Get(Slot(BaseDuration, i))
		if amount == "" && duration == "" {
			continue
		}
		if amount == "" {
			amount = "Not specified"
		}
		if duration == "" {
			duration = "Not specified"
		}
		out = append(out, Stipend{Amount: amount, Duration: duration})
	}
	return out
}
