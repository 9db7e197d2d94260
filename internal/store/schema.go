package store

import (
	"encoding/json"
	"fmt"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tempura/tempura/internal/domain"
)

// documentSchema describes the structural shape of a task document. It is
// deliberately permissive: extra fields and unrecognized priority or
// status values are accepted by design, so only structure is checked.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "tasks"],
  "properties": {
    "version": {"type": "string"},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "component"],
        "properties": {
          "id": {"type": "integer"},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "component": {"type": "string"},
          "priority": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "status": {"type": "string"},
          "created": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
          "notes": {"type": "string"},
          "acceptance": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("tasks.schema.json", documentSchema)

// Verify checks the on-disk document against the document schema and the
// id-uniqueness invariant. It is a diagnostic: Load itself only requires
// that the content decode, so Verify catches problems (duplicate ids,
// wrong field types) that a permissive load would let through.
func (s *Store) Verify() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read task store: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &domain.CorruptError{Path: s.path, Err: err}
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return &domain.CorruptError{Path: s.path, Err: err}
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return &domain.CorruptError{Path: s.path, Err: err}
	}

	seen := make(map[int]bool, len(doc.Tasks))
	for _, task := range doc.Tasks {
		if seen[task.ID] {
			return &domain.CorruptError{
				Path: s.path,
				Err:  fmt.Errorf("duplicate task id %d", task.ID),
			}
		}
		seen[task.ID] = true
	}
	return nil
}
