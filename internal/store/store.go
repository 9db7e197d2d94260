// Package store persists a task document to a single JSON file and layers
// CRUD and filter/sort operations on top of it.
//
// Every operation independently loads the full document, works on it in
// memory, and (for mutations) writes the whole document back. There is no
// caching across calls and no partial write. The design assumes a single
// writer at a time; concurrent processes mutating the same file may lose
// updates, and callers needing multi-writer safety must add external
// locking.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/tempura/tempura/internal/domain"
)

// Store is a handle on a task document at a fixed file path.
type Store struct {
	path   string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a structured logger. Without it the store is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store backed by the JSON document at path. The file is not
// touched until the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Init creates the backing file with an empty document if it does not
// exist, creating parent directories as needed. Idempotent: an existing
// file is never touched, even if its content is malformed.
func (s *Store) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat task store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	s.logger.Debug("initializing empty task store", zap.String("path", s.path))
	return s.Save(domain.NewDocument())
}

// Load ensures the store is initialized, then parses and returns the full
// document. Content that does not parse as a document surfaces as a
// CorruptError; it is never silently repaired.
func (s *Store) Load() (*domain.Document, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task store: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.CorruptError{Path: s.path, Err: err}
	}
	return &doc, nil
}

// Save serializes the document with stable field order and overwrites the
// backing file in full.
func (s *Store) Save(doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task store: %w", err)
	}
	return nil
}

// NextID returns the next available task id: one past the highest id in
// the document, or 1 for an empty store. Recomputed from the full document
// on every call rather than kept as a persisted counter; correct under
// single-writer use and cheap at the expected dataset size.
func (s *Store) NextID() (int, error) {
	doc, err := s.Load()
	if err != nil {
		return 0, err
	}
	return doc.MaxID() + 1, nil
}

// AddInput carries the caller-supplied fields for a new task. Title and
// Component are required; everything else falls back to its default.
type AddInput struct {
	Title       string
	Description string
	Component   string
	Priority    string
	Tags        []string
	Notes       string
	Acceptance  []string
}

// Add creates a task from the input, appends it at the end of the document
// (arrival order is preserved on disk), persists, and returns the new id.
// Priority and component are stored verbatim without validation.
func (s *Store) Add(input AddInput) (int, error) {
	if input.Title == "" {
		return 0, &domain.MissingFieldError{Field: "title"}
	}
	if input.Component == "" {
		return 0, &domain.MissingFieldError{Field: "component"}
	}

	doc, err := s.Load()
	if err != nil {
		return 0, err
	}

	task := domain.NewTask(doc.MaxID()+1, input.Title, input.Component)
	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	task.Notes = input.Notes
	if input.Acceptance != nil {
		task.Acceptance = input.Acceptance
	}

	doc.Tasks = append(doc.Tasks, task)
	if err := s.Save(doc); err != nil {
		return 0, err
	}

	s.logger.Info("task added",
		zap.Int("id", task.ID),
		zap.String("title", task.Title),
		zap.String("component", task.Component),
		zap.String("priority", task.Priority))
	return task.ID, nil
}

// Find returns the first task with the given id. Read-only; a miss
// returns a NotFoundError.
func (s *Store) Find(id int) (*domain.Task, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, task := range doc.Tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, &domain.NotFoundError{ID: id}
}

// Update overwrites the supplied fields on the first task with the given
// id and persists the document. Fields not mentioned are untouched; field
// names outside the canonical schema are preserved. A miss returns a
// NotFoundError without writing anything.
func (s *Store) Update(id int, updates map[string]any) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	for _, task := range doc.Tasks {
		if task.ID != id {
			continue
		}
		if err := task.Apply(updates); err != nil {
			return fmt.Errorf("failed to update task %d: %w", id, err)
		}
		if err := s.Save(doc); err != nil {
			return err
		}
		s.logger.Info("task updated",
			zap.Int("id", id),
			zap.Int("fields", len(updates)))
		return nil
	}
	return &domain.NotFoundError{ID: id}
}

// Remove deletes the first task with the given id, preserving the order of
// the remaining tasks, and returns the removed record. A miss returns a
// NotFoundError without writing anything.
func (s *Store) Remove(id int) (*domain.Task, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	for i, task := range doc.Tasks {
		if task.ID != id {
			continue
		}
		doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
		if err := s.Save(doc); err != nil {
			return nil, err
		}
		s.logger.Info("task removed",
			zap.Int("id", id),
			zap.String("title", task.Title))
		return task, nil
	}
	return nil, &domain.NotFoundError{ID: id}
}

// FilterOptions are conjunctive query criteria. Zero values impose no
// constraint.
type FilterOptions struct {
	Component string // exact match
	Tag       string // membership in the task's tag list
	Status    string // exact match
	Priority  string // exact match
}

// Filter returns the tasks matching every supplied criterion, sorted by
// priority rank then creation date, ascending. Ties keep their stored
// relative order. The stored document is not mutated.
func (s *Store) Filter(opts FilterOptions) ([]*domain.Task, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Task, 0, len(doc.Tasks))
	for _, task := range doc.Tasks {
		if opts.Component != "" && task.Component != opts.Component {
			continue
		}
		if opts.Tag != "" && !task.HasTag(opts.Tag) {
			continue
		}
		if opts.Status != "" && task.Status != opts.Status {
			continue
		}
		if opts.Priority != "" && task.Priority != opts.Priority {
			continue
		}
		matched = append(matched, task)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := domain.PriorityRank(matched[i].Priority), domain.PriorityRank(matched[j].Priority)
		if ri != rj {
			return ri < rj
		}
		// Zero-padded ISO dates order chronologically as strings.
		return matched[i].Created < matched[j].Created
	})
	return matched, nil
}
