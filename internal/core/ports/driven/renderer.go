package driven

import (
	"context"

	"github.com/custodia-labs/papyr/internal/core/domain"
)

// PageRenderer is the supplied document rendering capability. The
// viewer never decodes or rasterizes documents itself; it consumes
// this contract and treats everything behind it as opaque.
type PageRenderer interface {
	// Load opens the document at the given source and returns a handle
	// for page-level access. A load failure is a document-level error
	// surfaced to the user.
	Load(ctx context.Context, source string) (RenderedDocument, error)
}

// RenderedDocument is a successfully loaded document.
type RenderedDocument interface {
	// PageCount returns the total number of pages.
	PageCount() int

	// Outline returns the raw outline tree, or nil when the document
	// has none. Nil is distinct from an outline with unresolvable
	// entries.
	Outline(ctx context.Context) ([]domain.OutlineEntry, error)

	// PageIntrinsicSize reports the page's native size at scale 1.
	PageIntrinsicSize(ctx context.Context, page int) (domain.Size, error)

	// RenderPage produces the raster for a page.
	RenderPage(ctx context.Context, page int) (PageRaster, error)

	// ResolveNamed looks up a named destination and returns the
	// resolved destination value. Returns domain.ErrNotFound when the
	// name is unknown.
	ResolveNamed(ctx context.Context, name string) (any, error)

	// PageIndex resolves an opaque page reference to a zero-based
	// page index.
	PageIndex(ctx context.Context, ref any) (int, error)

	// Close releases renderer resources.
	Close() error
}

// PageRaster is a rendered page surface. For the terminal host the
// raster is text content; the interface keeps the core independent of
// the representation.
type PageRaster interface {
	// Page is the 1-based page number this raster belongs to.
	Page() int

	// Size is the raster's size at the zoom it was rendered for.
	Size() domain.Size

	// Text returns the page's textual content.
	Text() string
}
