package tui

import "errors"

// Port validation errors.
var (
	// ErrMissingViewerService indicates the viewer service port is nil.
	ErrMissingViewerService = errors.New("viewer service is required")

	// ErrMissingAnnotationService indicates the annotation service port is nil.
	ErrMissingAnnotationService = errors.New("annotation service is required")
)
