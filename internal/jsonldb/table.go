// Implements the JSONL table with in-memory caching and change observers.

package jsonldb

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/maruel/ksid"
)

var (
	errRowIDRequired = errors.New("row id is required")
	errRowExists     = errors.New("row already exists")
	errRowNotFound   = errors.New("row not found")
)

// Row is implemented by the types stored in a Table.
type Row[T any] interface {
	Clone() T
	GetID() ksid.ID
	Validate() error
}

// TableObserver is notified after each successful mutation.
type TableObserver[T any] interface {
	OnAppend(row T)
	OnUpdate(prev, curr T)
	OnDelete(row T)
}

// Table handles storage and in-memory caching for a single JSONL file.
type Table[T Row[T]] struct {
	path   string
	header *schemaHeader

	mu        sync.RWMutex
	rows      []T
	byID      map[ksid.ID]int
	observers []TableObserver[T]
}

// NewTable creates a Table and loads all rows from path.
func NewTable[T Row[T]](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // G301: data directory
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	h, err := schemaFromType[T]()
	if err != nil {
		return nil, err
	}
	t := &Table[T]{path: path, header: h}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) load() error {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		t.reindex()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if first {
			first = false
			var h schemaHeader
			if err := json.Unmarshal(line, &h); err != nil {
				return fmt.Errorf("failed to parse header of %s: %w", t.path, err)
			}
			if err := h.Validate(); err != nil {
				return fmt.Errorf("invalid header in %s: %w", t.path, err)
			}
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return fmt.Errorf("failed to unmarshal row in %s: %w", t.path, err)
		}
		if err := row.Validate(); err != nil {
			return fmt.Errorf("invalid row in %s: %w", t.path, err)
		}
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	slices.SortStableFunc(t.rows, func(a, b T) int {
		switch {
		case a.GetID() < b.GetID():
			return -1
		case a.GetID() > b.GetID():
			return 1
		}
		return 0
	})
	t.reindex()
	return nil
}

func (t *Table[T]) reindex() {
	t.byID = make(map[ksid.ID]int, len(t.rows))
	for i, r := range t.rows {
		t.byID[r.GetID()] = i
	}
}

// AddObserver registers o and replays the existing rows to it as appends.
func (t *Table[T]) AddObserver(o TableObserver[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
	for _, r := range t.rows {
		o.OnAppend(r)
	}
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Get returns a clone of the row with id, or the zero value.
func (t *Table[T]) Get(id ksid.ID) T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byID[id]
	if !ok {
		var zero T
		return zero
	}
	return t.rows[i].Clone()
}

// All returns an iterator over clones of all rows in id order.
func (t *Table[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		t.mu.RLock()
		rows := make([]T, len(t.rows))
		for i, r := range t.rows {
			rows[i] = r.Clone()
		}
		t.mu.RUnlock()
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Append validates row, persists it and adds it to the table.
func (t *Table[T]) Append(row T) error {
	if err := row.Validate(); err != nil {
		return err
	}
	if row.GetID().IsZero() {
		return errRowIDRequired
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[row.GetID()]; ok {
		return errRowExists
	}

	var buf bytes.Buffer
	if _, err := os.Stat(t.path); errors.Is(err, os.ErrNotExist) {
		h, _ := json.Marshal(t.header)
		buf.Write(h)
		buf.WriteByte('\n')
	}
	buf.Write(data)
	buf.WriteByte('\n')
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G302: table files are not secret
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	_, err = f.Write(buf.Bytes())
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	t.rows = append(t.rows, row.Clone())
	t.byID[row.GetID()] = len(t.rows) - 1
	for _, o := range t.observers {
		o.OnAppend(row)
	}
	return nil
}

// Update replaces the row sharing row's id.
func (t *Table[T]) Update(row T) error {
	if err := row.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.byID[row.GetID()]
	if !ok {
		return errRowNotFound
	}
	rows := slices.Clone(t.rows)
	prev := rows[i]
	rows[i] = row.Clone()
	if err := t.rewrite(rows); err != nil {
		return err
	}
	t.rows = rows
	for _, o := range t.observers {
		o.OnUpdate(prev, row)
	}
	return nil
}

// Delete removes the row with id and reports whether it existed.
func (t *Table[T]) Delete(id ksid.ID) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.byID[id]
	if !ok {
		return false, nil
	}
	prev := t.rows[i]
	rows := slices.Delete(slices.Clone(t.rows), i, i+1)
	if err := t.rewrite(rows); err != nil {
		return false, err
	}
	t.rows = rows
	t.reindex()
	for _, o := range t.observers {
		o.OnDelete(prev)
	}
	return true, nil
}

// rewrite atomically replaces the file content with the header and rows.
func (t *Table[T]) rewrite(rows []T) error {
	var buf bytes.Buffer
	h, err := json.Marshal(t.header)
	if err != nil {
		return err
	}
	buf.Write(h)
	buf.WriteByte('\n')
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // G306: table files are not secret
		return fmt.Errorf("failed to write table file: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace table file: %w", err)
	}
	return nil
}
