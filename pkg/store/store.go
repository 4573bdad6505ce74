package store

import (
	"errors"

	"edumate/pkg/domain"
)

// PlaceholderTitle is stored when a record is created without a title.
const PlaceholderTitle = "Untitled content"

// Failure sentinels. Implementations wrap the host error so callers can
// distinguish the failed operation with errors.Is while keeping the cause.
var (
	// ErrUnavailable indicates the underlying storage could not be opened.
	ErrUnavailable = errors.New("content store unavailable")
	// ErrReadFailed indicates a read transaction was rejected by the host.
	ErrReadFailed = errors.New("content read failed")
	// ErrWriteFailed indicates a write transaction was rejected by the host.
	ErrWriteFailed = errors.New("content write failed")
	// ErrDeleteFailed indicates a delete transaction was rejected by the host.
	ErrDeleteFailed = errors.New("content delete failed")
)

// Store defines persistence operations for processed-content records.
// It is the single source of truth: every other component either writes
// through it or derives read-only views from ListAll.
type Store interface {
	// Create assigns a fresh, monotonically distinct ID, persists the
	// record durably and returns it with the ID filled in. An empty
	// title is replaced with PlaceholderTitle.
	Create(c domain.NewContent) (domain.ContentRecord, error)

	// ListAll returns every record in insertion order. Recency ordering
	// is the caller's job via the Timestamp field.
	ListAll() ([]domain.ContentRecord, error)

	// GetByID looks up a single record. A missing ID yields ok=false
	// with a nil error; err is reserved for transport-level failures.
	GetByID(id int64) (domain.ContentRecord, bool, error)

	// DeleteByID removes one record. Deleting an absent ID is a no-op,
	// not an error.
	DeleteByID(id int64) error

	// ClearAll removes every record. Irreversible; callers must gate it
	// behind an explicit double confirmation.
	ClearAll() error
}
