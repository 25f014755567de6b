package application

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrCritical         = errors.New("critical failure")
	ErrStillReferenced  = errors.New("still referenced")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError represents a missing document, asset or record
type NotFoundError struct {
	Kind string // "document", "asset", "scan"
	ID   int64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FailedItem is one element of a batch that could not be processed
type FailedItem struct {
	ID     string
	Reason string
}

// PartialFailure collects per-item failures of an operation that otherwise completed
type PartialFailure struct {
	Op    string
	Items []FailedItem
}

// Add records one failed item
func (e *PartialFailure) Add(id, reason string) {
	e.Items = append(e.Items, FailedItem{ID: id, Reason: reason})
}

// Empty reports whether nothing failed
func (e *PartialFailure) Empty() bool {
	return e == nil || len(e.Items) == 0
}

func (e *PartialFailure) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (%s)", it.ID, it.Reason))
	}
	return fmt.Sprintf("%s: %d failed: %s", e.Op, len(e.Items), strings.Join(parts, ", "))
}

// CriticalFailure aborts an operation on one asset, e.g. a missing source file
type CriticalFailure struct {
	AssetID int64
	Stage   string
	Err     error
}

func (e *CriticalFailure) Error() string {
	return fmt.Sprintf("asset %d: %s: %v", e.AssetID, e.Stage, e.Err)
}

func (e *CriticalFailure) Is(target error) bool {
	return target == ErrCritical
}

func (e *CriticalFailure) Unwrap() error {
	return e.Err
}

// ReferencedError refuses to delete an asset some document still uses
type ReferencedError struct {
	AssetID   int64
	Documents []int64
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("asset %d is still referenced by %d document(s)", e.AssetID, len(e.Documents))
}

func (e *ReferencedError) Is(target error) bool {
	return target == ErrStillReferenced
}
