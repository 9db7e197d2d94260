package domain

import (
	"errors"
	"fmt"
)

// Common sentinel errors for store operations.
var (
	// ErrNotFound is returned when no task in the document carries the
	// requested id. Operations that miss never write the document.
	ErrNotFound = errors.New("task not found")

	// ErrMissingField is returned when a create input lacks a required
	// field. No task is created and nothing is written.
	ErrMissingField = errors.New("missing required field")

	// ErrCorrupt is returned when the backing file cannot be parsed as a
	// task document. The store never auto-repairs corrupt content.
	ErrCorrupt = errors.New("corrupt task store")
)

// NotFoundError reports which id was looked up.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MissingFieldError reports which required field was absent from a create
// input.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// CorruptError wraps the parse failure for an unreadable document.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt task store at %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}
