package domain

// Document describes a successfully loaded paper document.
// It is created on load and discarded whenever the source identity
// (paper ID or document source) changes.
type Document struct {
	// PaperID is the owning paper record identifier.
	PaperID string

	// Source is the opaque document source (file path or URL).
	Source string

	// PageCount is the total number of pages.
	PageCount int
}

// SameIdentity reports whether the document refers to the same
// underlying source. A change of identity resets all viewer state.
func (d Document) SameIdentity(paperID, source string) bool {
	return d.PaperID == paperID && d.Source == source
}

// PageGeometry is the per-page ground truth all pixel projections
// read from.
type PageGeometry struct {
	// Page is the 1-based page number.
	Page int

	// Intrinsic is the page's native size as reported by the
	// renderer at scale 1.
	Intrinsic Size

	// Measured is the actual on-screen size after rendering, refreshed
	// after zoom and layout changes. When present it is authoritative
	// over Intrinsic scaled by zoom.
	Measured *Size
}

// ProjectedSize returns the size to use for pixel projection at the
// given zoom: the measured size when present, else intrinsic × zoom.
func (g PageGeometry) ProjectedSize(zoom float64) Size {
	if g.Measured != nil {
		return *g.Measured
	}
	return g.Intrinsic.Scaled(zoom)
}
