// Defines the whole-store document holding every collection.

package record

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Document is the complete record store: one ordered list per kind.
//
// Collections absent from the stored form read as empty lists. Unknown
// top-level keys are kept so that rewriting the document does not lose them.
type Document struct {
	collections [numKinds][]Record
	extra       map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Rows returns the records of kind k. The slice is owned by the document.
func (d *Document) Rows(k Kind) []Record {
	if !k.Valid() {
		return nil
	}
	return d.collections[k]
}

// SetRows replaces the records of kind k.
func (d *Document) SetRows(k Kind, rows []Record) {
	if k.Valid() {
		d.collections[k] = rows
	}
}

// Find returns the index and record with the given id in kind k, or -1.
func (d *Document) Find(k Kind, id string) (int, Record) {
	for i, r := range d.Rows(k) {
		if r.ID() == id {
			return i, r
		}
	}
	return -1, nil
}

// Insert adds r to kind k, at the head when head is true, else at the tail.
func (d *Document) Insert(k Kind, r Record, head bool) {
	if !k.Valid() {
		return
	}
	if head {
		d.collections[k] = slices.Insert(d.collections[k], 0, r)
	} else {
		d.collections[k] = append(d.collections[k], r)
	}
}

// Remove deletes every record with the given id from kind k and returns how
// many were removed.
func (d *Document) Remove(k Kind, id string) int {
	if !k.Valid() {
		return 0
	}
	before := len(d.collections[k])
	d.collections[k] = slices.DeleteFunc(d.collections[k], func(r Record) bool { return r.ID() == id })
	return before - len(d.collections[k])
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{}
	for k := range d.collections {
		if d.collections[k] == nil {
			continue
		}
		rows := make([]Record, len(d.collections[k]))
		for i, r := range d.collections[k] {
			rows[i] = r.Clone()
		}
		c.collections[k] = rows
	}
	if d.extra != nil {
		c.extra = make(map[string]json.RawMessage, len(d.extra))
		for k, v := range d.extra {
			c.extra[k] = slices.Clone(v)
		}
	}
	return c
}

// MarshalJSON encodes the document with every collection present.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, int(numKinds)+len(d.extra))
	for k, v := range d.extra {
		out[k] = v
	}
	for _, k := range Kinds() {
		rows := d.collections[k]
		if rows == nil {
			rows = []Record{}
		}
		out[k.Collection()] = rows
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a stored document. A null or missing collection is
// treated as empty.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document{}
	for key, v := range raw {
		k, ok := ParseCollection(key)
		if !ok {
			if d.extra == nil {
				d.extra = make(map[string]json.RawMessage)
			}
			d.extra[key] = v
			continue
		}
		var rows []Record
		if err := json.Unmarshal(v, &rows); err != nil {
			return fmt.Errorf("collection %s: %w", key, err)
		}
		d.collections[k] = rows
	}
	return nil
}
