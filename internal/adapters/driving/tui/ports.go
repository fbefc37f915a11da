// Package tui provides an interactive terminal user interface for papyr.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Viewer drives document loading, navigation, zoom and capture.
	Viewer driving.ViewerService

	// Annotations manages stored annotations and their activation.
	Annotations driving.AnnotationService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(viewer driving.ViewerService, annotations driving.AnnotationService) *Ports {
	return &Ports{
		Viewer:      viewer,
		Annotations: annotations,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Viewer == nil {
		return ErrMissingViewerService
	}
	if p.Annotations == nil {
		return ErrMissingAnnotationService
	}
	return nil
}
