// Builds the schema header written as the first line of a table file.

package jsonldb

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

const currentVersion = "1.0"

type columnType string

const (
	columnTypeText   columnType = "text"
	columnTypeNumber columnType = "number"
	columnTypeBool   columnType = "bool"
	columnTypeDate   columnType = "date"
	columnTypeJSONB  columnType = "jsonb"
)

type column struct {
	Name        string     `json:"name"`
	Type        columnType `json:"type"`
	Required    bool       `json:"required,omitempty"`
	Description string     `json:"description,omitempty"`
}

type schemaHeader struct {
	Version string   `json:"version"`
	Columns []column `json:"columns"`
}

var errSchemaVersionRequired = errors.New("schema version is required")

// Validate checks that the schema header is well-formed.
func (h *schemaHeader) Validate() error {
	if h.Version == "" {
		return errSchemaVersionRequired
	}
	for i, col := range h.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d: name is required", i)
		}
		if col.Type == "" {
			return fmt.Errorf("column %d: type is required", i)
		}
	}
	return nil
}

// schemaFromType extracts column definitions from T using JSON Schema
// reflection, so `jsonschema:"description=..."` tags end up in the header.
func schemaFromType[T any]() (*schemaHeader, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("row type must be a struct or pointer to struct, got %s", t.Kind())
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.ReflectFromType(t)
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	h := &schemaHeader{Version: currentVersion}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		h.Columns = append(h.Columns, column{
			Name:        pair.Key,
			Type:        columnTypeOf(pair.Value),
			Required:    required[pair.Key],
			Description: pair.Value.Description,
		})
	}
	return h, nil
}

func columnTypeOf(p *jsonschema.Schema) columnType {
	switch p.Type {
	case "integer", "number":
		return columnTypeNumber
	case "boolean":
		return columnTypeBool
	case "object", "array":
		return columnTypeJSONB
	case "string":
		if p.Format == "date-time" {
			return columnTypeDate
		}
	}
	return columnTypeText
}
