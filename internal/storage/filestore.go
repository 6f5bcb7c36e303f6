// Stores the record document and coaching table as JSON files in a directory.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sarkari/portal/internal/record"
)

// File names inside the data directory.
const (
	DocumentFile     = "data.json"
	CoachingFile     = "coachingInstitutes.json"
	CoachingSeedFile = "coaching_seed.yaml"
)

// FileBackend implements Backend over two JSON files.
//
// Writes go to a temporary file in the same directory and are renamed over
// the target so a crash never leaves a truncated document behind.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: data directory
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the data directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

// LoadDocument implements Backend.
func (b *FileBackend) LoadDocument(_ context.Context) (*record.Document, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, DocumentFile))
	if errors.Is(err, os.ErrNotExist) {
		return record.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DocumentFile, err)
	}
	doc := record.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DocumentFile, err)
	}
	return doc, nil
}

// SaveDocument implements Backend.
func (b *FileBackend) SaveDocument(_ context.Context, doc *record.Document) error {
	return b.writeJSON(DocumentFile, doc)
}

// LoadCoaching implements Backend.
//
// When the JSON file does not exist yet, the table is seeded from
// coaching_seed.yaml if present.
func (b *FileBackend) LoadCoaching(_ context.Context) (*record.CoachingTable, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, CoachingFile))
	if errors.Is(err, os.ErrNotExist) {
		return b.loadSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", CoachingFile, err)
	}
	t := record.NewCoachingTable()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", CoachingFile, err)
	}
	return t, nil
}

// SaveCoaching implements Backend.
func (b *FileBackend) SaveCoaching(_ context.Context, t *record.CoachingTable) error {
	return b.writeJSON(CoachingFile, t)
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) loadSeed() (*record.CoachingTable, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, CoachingSeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return record.NewCoachingTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", CoachingSeedFile, err)
	}
	t, err := ParseCoachingSeed(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", CoachingSeedFile, err)
	}
	return t, nil
}

// ParseCoachingSeed decodes a YAML mapping of title to institute list. The
// mapping order is kept.
func ParseCoachingSeed(data []byte) (*record.CoachingTable, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	t := record.NewCoachingTable()
	if len(root.Content) == 0 {
		return t, nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, errors.New("seed must be a mapping of title to institutes")
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		var institutes []record.Coaching
		if err := m.Content[i+1].Decode(&institutes); err != nil {
			return nil, fmt.Errorf("line %d: %w", m.Content[i+1].Line, err)
		}
		t.Set(m.Content[i].Value, institutes)
	}
	return t, nil
}

func (b *FileBackend) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	data = append(data, '\n')
	f, err := os.CreateTemp(b.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(b.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
