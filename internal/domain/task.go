// Package domain defines the task document model persisted by the store.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Priority level names. Anything outside this set is accepted and stored
// as-is, but sorts after all four known levels.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium" // Default priority
	PriorityLow      = "low"
)

// StatusPending is the status every task starts with. The store does not
// constrain status values after creation.
const StatusPending = "pending"

// CreatedLayout is the calendar-date form used for the created field.
// Zero-padded ISO dates compare correctly as plain strings, which the
// filter sort relies on.
const CreatedLayout = "2006-01-02"

// unknownPriorityRank sorts unrecognized priority values after the known
// levels. All unknown values share the same rank.
const unknownPriorityRank = 999

var priorityRanks = map[string]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// PriorityRank returns the sort rank for a priority value.
// critical < high < medium < low < everything else.
func PriorityRank(priority string) int {
	if rank, ok := priorityRanks[priority]; ok {
		return rank
	}
	return unknownPriorityRank
}

// Task represents a single work item in the document.
//
// Extra holds fields outside the canonical schema. Updates may introduce
// such fields and they survive load/save round trips; canonical fields
// always serialize first, in a fixed order, so documents stay diffable.
type Task struct {
	ID          int
	Title       string
	Description string
	Component   string
	Priority    string
	Tags        []string
	Status      string
	Created     string
	Started     any
	Notes       string
	Acceptance  []string
	Extra       map[string]json.RawMessage
}

// taskJSON is the canonical wire form of a task. Field order here is the
// field order on disk.
type taskJSON struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Component   string   `json:"component"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	Created     string   `json:"created"`
	Started     any      `json:"started"`
	Notes       string   `json:"notes"`
	Acceptance  []string `json:"acceptance"`
}

// canonicalFields lists every key handled by taskJSON. Keys outside this
// set are carried in Task.Extra.
var canonicalFields = map[string]bool{
	"id": true, "title": true, "description": true, "component": true,
	"priority": true, "tags": true, "status": true, "created": true,
	"started": true, "notes": true, "acceptance": true,
}

// NewTask creates a task with the given identity and required fields,
// filling every optional field with its default. Status is pending and
// created is today's date.
func NewTask(id int, title, component string) *Task {
	return &Task{
		ID:         id,
		Title:      title,
		Component:  component,
		Priority:   PriorityMedium,
		Tags:       []string{},
		Status:     StatusPending,
		Created:    time.Now().Format(CreatedLayout),
		Acceptance: []string{},
	}
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Apply overwrites the supplied fields on the task. Fields not mentioned
// are untouched; field names outside the canonical schema are preserved
// as extra fields. Nothing stops a caller from reassigning id or created.
func (t *Task) Apply(updates map[string]any) error {
	for field, value := range updates {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		if err := t.setField(field, raw); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
	}
	return nil
}

func (t *Task) setField(field string, raw json.RawMessage) error {
	switch field {
	case "id":
		return json.Unmarshal(raw, &t.ID)
	case "title":
		return json.Unmarshal(raw, &t.Title)
	case "description":
		return json.Unmarshal(raw, &t.Description)
	case "component":
		return json.Unmarshal(raw, &t.Component)
	case "priority":
		return json.Unmarshal(raw, &t.Priority)
	case "tags":
		return json.Unmarshal(raw, &t.Tags)
	case "status":
		return json.Unmarshal(raw, &t.Status)
	case "created":
		return json.Unmarshal(raw, &t.Created)
	case "started":
		return json.Unmarshal(raw, &t.Started)
	case "notes":
		return json.Unmarshal(raw, &t.Notes)
	case "acceptance":
		return json.Unmarshal(raw, &t.Acceptance)
	default:
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[field] = raw
		return nil
	}
}

// MarshalJSON serializes the canonical fields in their fixed order, then
// any extra fields sorted by name.
func (t *Task) MarshalJSON() ([]byte, error) {
	canonical := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Component:   t.Component,
		Priority:    t.Priority,
		Tags:        t.Tags,
		Status:      t.Status,
		Created:     t.Created,
		Started:     t.Started,
		Notes:       t.Notes,
		Acceptance:  t.Acceptance,
	}
	// Empty sequences serialize as [], never null.
	if canonical.Tags == nil {
		canonical.Tags = []string{}
	}
	if canonical.Acceptance == nil {
		canonical.Acceptance = []string{}
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return data, nil
	}

	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1]) // drop closing brace
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(t.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the canonical fields and keeps any remaining keys
// as extra fields.
func (t *Task) UnmarshalJSON(data []byte) error {
	var canonical taskJSON
	if err := json.Unmarshal(data, &canonical); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = Task{
		ID:          canonical.ID,
		Title:       canonical.Title,
		Description: canonical.Description,
		Component:   canonical.Component,
		Priority:    canonical.Priority,
		Tags:        canonical.Tags,
		Status:      canonical.Status,
		Created:     canonical.Created,
		Started:     canonical.Started,
		Notes:       canonical.Notes,
		Acceptance:  canonical.Acceptance,
	}
	for k, v := range fields {
		if canonicalFields[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[k] = v
	}
	return nil
}
