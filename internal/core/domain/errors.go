package domain

import "errors"

// Domain errors represent viewer logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDocumentNotLoaded indicates no document is currently loaded.
	ErrDocumentNotLoaded = errors.New("document not loaded")

	// ErrLoadFailed indicates the underlying document failed to load.
	// This is the only failure surfaced as a visible error state; the
	// UI stays interactive.
	ErrLoadFailed = errors.New("document load failed")

	// ErrPageOutOfRange indicates a page number outside [1, pageCount].
	// Rejected at the API boundary, never thrown mid-operation.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrStaleGeneration indicates an async result arrived for a
	// document identity that is no longer current and was discarded.
	ErrStaleGeneration = errors.New("stale document generation")

	// ErrNotRenderable indicates a page box has no area yet and the
	// caller must retry after layout settles.
	ErrNotRenderable = errors.New("page not yet renderable")
)
