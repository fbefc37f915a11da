package driven

import "github.com/custodia-labs/papyr/internal/core/domain"

// PageSurface is the live render target of a mounted page. The
// geometry registry holds surfaces weakly: the host attaches one when
// a page mounts and detaches it on unmount, and a surface handle never
// outlives its page.
type PageSurface interface {
	// Page is the 1-based page number.
	Page() int

	// Bounds is the page's outer box relative to the viewport origin.
	Bounds() domain.PageBox

	// ContentBounds is the actual rendered content surface, preferred
	// over Bounds for selection geometry. Returns false when the
	// content has not painted yet.
	ContentBounds() (domain.PageBox, bool)

	// ContainsAnchor reports whether the given opaque selection anchor
	// belongs to this page.
	ContainsAnchor(anchor any) bool
}

// LayoutObserver notifies about layout size changes of registered
// page surfaces. Implementations may use platform resize-observation
// primitives; the core only needs the generic event source.
type LayoutObserver interface {
	// Observe registers fn to run with the surface's new size whenever
	// its layout box changes. The returned cancel stops observation.
	Observe(surface PageSurface, fn func(domain.Size)) (cancel func())
}

// Viewport is the scrollable container the page stack lives in.
type Viewport interface {
	// Size is the viewport's current size.
	Size() domain.Size

	// ScrollTop is the current vertical scroll offset.
	ScrollTop() float64

	// ScrollTo scrolls to the given offset, smoothly when supported.
	ScrollTo(top float64, smooth bool)
}
