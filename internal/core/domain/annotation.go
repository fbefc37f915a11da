package domain

import "time"

// AnnotationKind distinguishes the annotation shapes the viewer knows
// how to project.
type AnnotationKind string

const (
	// KindHighlight is a box-shaped text highlight.
	KindHighlight AnnotationKind = "highlight"

	// KindNote is a point-anchored margin note.
	KindNote AnnotationKind = "note"
)

// Annotation is a user-authored mark overlaid on a page. Positions are
// stored exclusively in normalized page-relative coordinates; pixel
// coordinates exist only transiently during rendering or capture.
type Annotation struct {
	// ID is the unique identifier for the annotation.
	ID string

	// PaperID links to the paper the annotation belongs to.
	PaperID string

	// Kind is the annotation shape.
	Kind AnnotationKind

	// Page is the 1-based page number the annotation lives on.
	Page int

	// Point is the normalized anchor for point-shaped annotations.
	Point *NormalizedPoint

	// Box is the normalized bounds for box-shaped annotations.
	Box *NormalizedBox

	// Text is the captured source text, if any.
	Text string

	// Comment is the user's note attached to the annotation.
	Comment string

	// CreatedAt is when the annotation was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the annotation was last changed.
	UpdatedAt time.Time
}
