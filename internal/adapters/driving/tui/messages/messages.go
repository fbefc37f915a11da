// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/papyr/internal/core/domain"
)

// DocumentLoaded carries the result of a document load.
type DocumentLoaded struct {
	Document domain.Document
	Err      error
}

// DocumentChangedOnDisk is sent when the watched source file changes
// and the document should be reloaded.
type DocumentChangedOnDisk struct{}

// PageRendered signals that a page raster became available.
type PageRendered struct {
	Page int
}

// CurrentPageChanged is sent when scroll tracking moves the current page.
type CurrentPageChanged struct {
	Page int
}

// ZoomChanged is sent when the applied zoom factor changes.
type ZoomChanged struct {
	Zoom float64
}

// OutlineEntrySelected requests navigation to an outline entry's page.
type OutlineEntrySelected struct {
	Page int
}

// AnnotationsLoaded carries the annotation list for the loaded paper.
type AnnotationsLoaded struct {
	Annotations []domain.Annotation
	Err         error
}

// AnnotationCaptured signals that a highlight was captured and stored.
type AnnotationCaptured struct {
	Annotation domain.Annotation
	Err        error
}

// AnnotationActivated is sent when an annotation is activated from the
// annotation list.
type AnnotationActivated struct {
	Annotation domain.Annotation
}

// EditAnnotation requests the comment editor for an annotation.
type EditAnnotation struct {
	Annotation domain.Annotation
}

// AnnotationSaved signals that a comment edit was persisted.
type AnnotationSaved struct {
	ID  string
	Err error
}

// AnnotationDeleted signals that an annotation was removed.
type AnnotationDeleted struct {
	ID  string
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewReader is the scrollable page reader.
	ViewReader ViewType = iota
	// ViewOutline is the outline navigation sidebar.
	ViewOutline
	// ViewAnnotations is the annotation list view.
	ViewAnnotations
	// ViewAnnotEdit is the floating comment editor.
	ViewAnnotEdit
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewReader:
		return "reader"
	case ViewOutline:
		return "outline"
	case ViewAnnotations:
		return "annotations"
	case ViewAnnotEdit:
		return "annot_edit"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
