// Defines the loosely typed content record shared by every collection.

// Package record holds the content data model: records, collections, the
// identifier allocator, date handling and numbered-slot accessors.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Well-known field names.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldCategory    = "category"
	FieldJobID       = "jobId"
	FieldDescription = "description"
	FieldURL         = "url"
)

// Record is a single content row. Every value is a string and an absent key
// reads as the empty string.
type Record map[string]string

// Get returns the value of key, or "" when absent. Safe on a nil Record.
func (r Record) Get(key string) string {
	return r[key]
}

// ID returns the record identifier.
func (r Record) ID() string { return r[FieldID] }

// Title returns the record title.
func (r Record) Title() string { return r[FieldTitle] }

// Date returns the display date (DD-MM-YYYY).
func (r Record) Date() string { return r[FieldDate] }

// JobID returns the parent job reference of a child record.
func (r Record) JobID() string { return r[FieldJobID] }

// Clone returns a copy that shares no state with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Merge copies every field of src over r.
func (r Record) Merge(src Record) {
	for k, v := range src {
		r[k] = v
	}
}

// DropEmpty removes keys whose value is the empty string.
func (r Record) DropEmpty() {
	for k, v := range r {
		if v == "" {
			delete(r, k)
		}
	}
}

// UnmarshalJSON decodes a JSON object, coercing scalars to strings.
//
// Numbers keep their literal form, booleans become "true"/"false" and null
// becomes "". Nested arrays and objects are skipped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Record, len(raw))
	for k, v := range raw {
		s, ok, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			out[k] = s
		}
	}
	*r = out
	return nil
}

// scalarString converts a raw JSON value to its string form. ok is false for
// arrays and objects.
func scalarString(v json.RawMessage) (string, bool, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", true, nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case 'n':
		return "", true, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return "", false, err
		}
		return strconv.FormatBool(b), true, nil
	case '[', '{':
		return "", false, nil
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", false, err
		}
		return n.String(), true, nil
	}
}
