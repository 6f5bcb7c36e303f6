// Package listing serves the read-only views over the collections: category
// pages, section pages, the home feed and title search.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sarkari/portal/internal/record"
	"github.com/sarkari/portal/internal/storage"
)

// ErrUnknownSection is returned for a section slug that is not served.
var ErrUnknownSection = errors.New("unknown section")

// Item is a record tagged with the kind it was read from.
type Item struct {
	Kind   record.Kind
	Record record.Record
}

// MarshalJSON flattens the record and adds its kind label and collection.
func (it Item) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(it.Record)+2)
	maps.Copy(m, it.Record)
	m["kind"] = it.Kind.Label()
	m["collection"] = it.Kind.Collection()
	return json.Marshal(m)
}

// Section is a public listing page backed by one collection.
type Section struct {
	Slug  string      `json:"slug"`
	Name  string      `json:"name"`
	Kind  record.Kind `json:"-"`
	Items []Item      `json:"items"`
}

var sections = []Section{
	{Slug: "jobs", Name: "Latest Jobs", Kind: record.Job},
	{Slug: "admit-cards", Name: "Admit Cards", Kind: record.AdmitCard},
	{Slug: "results", Name: "Results", Kind: record.Result},
	{Slug: "answer-keys", Name: "Answer Keys", Kind: record.AnswerKey},
	{Slug: "sarkari-yojana", Name: "Sarkari Yojana", Kind: record.Yojana},
	{Slug: "internship", Name: "Internships", Kind: record.Internship},
	{Slug: "scholarship-test", Name: "Scholarship Tests", Kind: record.Scholarship},
}

// Sections returns the served section slugs in display order.
func Sections() []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Slug)
	}
	return out
}

// Service reads listings from a Repository.
type Service struct {
	repo storage.Repository
}

// New returns a Service.
func New(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

// CategoryPage is the union of job-like records sharing a category.
type CategoryPage struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Items       []Item `json:"items"`
}

// categoryKinds are the collections a category page draws from.
var categoryKinds = []record.Kind{record.Job, record.AdmitCard, record.Result, record.AnswerKey}

// Category returns the records whose normalized category equals the
// normalized name, newest first.
func (s *Service) Category(ctx context.Context, name string) (*CategoryPage, error) {
	doc, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	want := NormalizeCategory(name)
	items := []Item{}
	for _, k := range categoryKinds {
		for _, r := range doc.Rows(k) {
			if c := r.Get(record.FieldCategory); c != "" && NormalizeCategory(c) == want {
				items = append(items, Item{Kind: k, Record: r})
			}
		}
	}
	sortByDate(items)
	return &CategoryPage{Name: name, DisplayName: CategoryDisplayName(name), Items: items}, nil
}

// Section returns the records of the section slug, newest first.
func (s *Service) Section(ctx context.Context, slug string) (*Section, error) {
	i := slices.IndexFunc(sections, func(sec Section) bool { return sec.Slug == slug })
	if i < 0 {
		return nil, ErrUnknownSection
	}
	rows, err := s.repo.List(ctx, sections[i].Kind)
	if err != nil {
		return nil, err
	}
	sec := sections[i]
	sec.Items = tag(sec.Kind, rows)
	sortByDate(sec.Items)
	return &sec, nil
}

// Home is the landing page feed.
type Home struct {
	// Sections holds every collection, newest first, keyed by collection name.
	Sections      map[string][]Item `json:"sections"`
	Notices       []Item            `json:"notices"`
	LatestUpdates []Item            `json:"latestUpdates"`
}

// Number of head items of each collection shown as notices.
var noticeCounts = []struct {
	kind  record.Kind
	count int
}{
	{record.Job, 3},
	{record.Internship, 2},
	{record.Scholarship, 2},
}

var latestKinds = []record.Kind{record.Job, record.AdmitCard, record.Result, record.Internship, record.Scholarship}

const maxLatest = 5

// Home builds the landing page feed.
func (s *Service) Home(ctx context.Context) (*Home, error) {
	doc, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	h := &Home{Sections: make(map[string][]Item), Notices: []Item{}, LatestUpdates: []Item{}}
	for _, k := range record.Kinds() {
		items := tag(k, doc.Rows(k))
		sortByDate(items)
		h.Sections[k.Collection()] = items
	}
	for _, n := range noticeCounts {
		items := h.Sections[n.kind.Collection()]
		h.Notices = append(h.Notices, items[:min(n.count, len(items))]...)
	}
	for _, k := range latestKinds {
		if items := h.Sections[k.Collection()]; len(items) > 0 {
			h.LatestUpdates = append(h.LatestUpdates, items[0])
		}
	}
	sortByDate(h.LatestUpdates)
	h.LatestUpdates = h.LatestUpdates[:min(maxLatest, len(h.LatestUpdates))]
	return h, nil
}

// NormalizeCategory lowercases s, turns %20 and dashes into spaces, removes
// dots and collapses whitespace.
func NormalizeCategory(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "%20", " ")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

var acronyms = map[string]bool{"upsc": true, "ssc": true, "ibps": true, "rrb": true, "uppsc": true, "upsssc": true, "psu": true}

// CategoryDisplayName renders a category slug for headings.
func CategoryDisplayName(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		switch {
		case acronyms[w]:
			words[i] = strings.ToUpper(w)
		case w != "":
			words[i] = capitalize(w)
		}
	}
	return strings.Join(words, " ")
}

func tag(k record.Kind, rows []record.Record) []Item {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, Item{Kind: k, Record: r})
	}
	return out
}

// sortByDate orders items newest first. Equal or invalid dates keep their
// stored order.
func sortByDate(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return record.SortKey(b.Record).Compare(record.SortKey(a.Record))
	})
}

// capitalize upper-cases the first rune of w.
func capitalize(w string) string {
	r, n := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[n:]
}
