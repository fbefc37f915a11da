package domain

// OutlineEntry is one node of the raw navigable outline as reported
// by the renderer. Destination is an opaque, renderer-specific value
// that must be resolved to a page number before use.
type OutlineEntry struct {
	// Title is the heading text.
	Title string

	// Destination is the raw destination. It may be nil, a named
	// destination (string), an explicit destination array, an
	// object-shaped page reference, or a bare page number.
	Destination any

	// Children are nested entries.
	Children []OutlineEntry
}

// ResolvedOutlineEntry is an outline node whose destination has been
// resolved to a validated 1-based page number.
type ResolvedOutlineEntry struct {
	// Title is the heading text.
	Title string

	// Page is always within [1, pageCount].
	Page int

	// Defaulted marks entries whose destination could not be resolved
	// and fell back to page 1.
	Defaulted bool

	// Children are nested resolved entries.
	Children []ResolvedOutlineEntry
}
