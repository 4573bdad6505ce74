package app

import "errors"

var (
	// ErrTextTooShort rejects input below the minimum length for a
	// meaningful transformation.
	ErrTextTooShort = errors.New("text must be at least 10 characters")
	// ErrContentNotFound indicates no record exists with the given id.
	ErrContentNotFound = errors.New("content not found")
	// ErrArchiveUnavailable indicates no object storage is configured.
	ErrArchiveUnavailable = errors.New("archive storage not configured")
)
