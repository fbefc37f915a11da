package domain

// ViewportState is a snapshot of the viewer's navigation state.
type ViewportState struct {
	// CurrentPage is the page deemed "in view".
	CurrentPage int

	// PageCount is the loaded document's page count, zero when no
	// document is loaded.
	PageCount int

	// Zoom is the applied zoom factor.
	Zoom float64

	// ProgrammaticScroll is true while a scroll-to-page animation is
	// in flight and reactive page tracking is suppressed.
	ProgrammaticScroll bool
}

// Selection is a live text selection at capture time.
type Selection struct {
	// Text is the selected text.
	Text string

	// Bounds is the selection's bounding rectangle in viewport pixels.
	Bounds PixelRect

	// Anchor is the opaque node owning the selection, used to find
	// the page containing it.
	Anchor any
}

// PanelRequest asks for a collision-avoiding placement of a floating
// panel anchored to an on-screen point.
type PanelRequest struct {
	// Anchor is the anchor point in viewport pixels.
	Anchor PixelPoint

	// Panel is the panel's measured size. Placement must be re-run
	// once the panel has been measured post-paint.
	Panel Size
}

// PlacedPanel is the computed panel position. The panel's full box
// stays within the padded viewport whenever the viewport is large
// enough to hold it.
type PlacedPanel struct {
	X float64
	Y float64

	// MaxHeight caps the panel height when it fits neither above nor
	// below the anchor. Zero means unconstrained.
	MaxHeight float64
}
