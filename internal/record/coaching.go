// Implements the title-keyed coaching institute side table.

package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// CoachingEntry is one title of the coaching table.
type CoachingEntry struct {
	Title      string
	Institutes []Coaching
}

// CoachingTable maps a job title to its recommended institutes.
//
// Keys are the job title text, not the job id, so renaming a job leaves the
// old key behind. Key order is preserved through load and save because
// fuzzy lookups return the first matching key.
type CoachingTable struct {
	entries []CoachingEntry
}

// NewCoachingTable returns an empty table.
func NewCoachingTable() *CoachingTable {
	return &CoachingTable{}
}

// Len returns the number of titles.
func (t *CoachingTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in key order.
func (t *CoachingTable) Entries() []CoachingEntry {
	out := make([]CoachingEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = CoachingEntry{Title: e.Title, Institutes: slices.Clone(e.Institutes)}
	}
	return out
}

// Get returns the institutes stored under the exact title.
func (t *CoachingTable) Get(title string) ([]Coaching, bool) {
	if i := t.index(title); i >= 0 {
		return t.entries[i].Institutes, true
	}
	return nil, false
}

// Set replaces the institutes of title. An empty list removes the key.
func (t *CoachingTable) Set(title string, institutes []Coaching) {
	i := t.index(title)
	if len(institutes) == 0 {
		if i >= 0 {
			t.entries = slices.Delete(t.entries, i, i+1)
		}
		return
	}
	if i >= 0 {
		t.entries[i].Institutes = slices.Clone(institutes)
		return
	}
	t.entries = append(t.entries, CoachingEntry{Title: title, Institutes: slices.Clone(institutes)})
}

// Delete removes the exact title and reports whether it existed.
func (t *CoachingTable) Delete(title string) bool {
	i := t.index(title)
	if i < 0 {
		return false
	}
	t.entries = slices.Delete(t.entries, i, i+1)
	return true
}

// Match returns the first key matching title: an exact match after
// normalization, else the first key where either normalized string
// contains the other.
func (t *CoachingTable) Match(title string) (string, bool) {
	want := NormalizeTitle(title)
	if want == "" {
		return "", false
	}
	for _, e := range t.entries {
		if NormalizeTitle(e.Title) == want {
			return e.Title, true
		}
	}
	for _, e := range t.entries {
		key := NormalizeTitle(e.Title)
		if key == "" {
			continue
		}
		if strings.Contains(key, want) || strings.Contains(want, key) {
			return e.Title, true
		}
	}
	return "", false
}

// Lookup returns the institutes of the key matched by Match.
func (t *CoachingTable) Lookup(title string) []Coaching {
	key, ok := t.Match(title)
	if !ok {
		return nil
	}
	v, _ := t.Get(key)
	return v
}

// Top returns the institutes shown next to a detail page: the first key that
// contains the lowercased title, or whose first word the title contains.
func (t *CoachingTable) Top(title string) []Coaching {
	want := strings.ToLower(title)
	if want == "" {
		return nil
	}
	for _, e := range t.entries {
		key := strings.ToLower(e.Title)
		first, _, _ := strings.Cut(strings.TrimSpace(key), " ")
		if first == "" {
			continue
		}
		if strings.Contains(key, want) || strings.Contains(want, first) {
			return e.Institutes
		}
	}
	return nil
}

func (t *CoachingTable) index(title string) int {
	return slices.IndexFunc(t.entries, func(e CoachingEntry) bool { return e.Title == title })
}

// NormalizeTitle lowercases s, trims it and collapses inner whitespace.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MarshalJSON encodes the table as a JSON object in key order.
func (t *CoachingTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Title)
		if err != nil {
			return nil, err
		}
		institutes := e.Institutes
		if institutes == nil {
			institutes = []Coaching{}
		}
		v, err := json.Marshal(institutes)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errCoachingNotObject = errors.New("coaching table must be a JSON object")

// UnmarshalJSON decodes a JSON object, keeping key order.
func (t *CoachingTable) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	tok, err := d.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		t.entries = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errCoachingNotObject
	}
	var entries []CoachingEntry
	for d.More() {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errCoachingNotObject
		}
		var institutes []Coaching
		if err := d.Decode(&institutes); err != nil {
			return fmt.Errorf("coaching %q: %w", key, err)
		}
		entries = append(entries, CoachingEntry{Title: key, Institutes: institutes})
	}
	if _, err := d.Token(); err != nil {
		return err
	}
	t.entries = entries
	return nil
}
