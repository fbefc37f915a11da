package driving

import (
	"context"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// ViewerService drives a single-document viewer instance.
type ViewerService interface {
	// LoadDocument loads the document for the given paper, resetting
	// all viewer state first. An in-flight load whose identity no
	// longer matches the current one is discarded on completion.
	LoadDocument(ctx context.Context, paperID, source string) error

	// Document returns the loaded document, or false when none is
	// loaded.
	Document() (domain.Document, bool)

	// LoadError returns the last document-level load failure, or nil.
	// The UI stays interactive while an error is surfaced.
	LoadError() error

	// State returns a snapshot of the navigation state.
	State() domain.ViewportState

	// ScrollToPage starts a programmatic scroll that centers the page
	// in the viewport. Out-of-range targets are a validation no-op.
	ScrollToPage(page int)

	// HandleScroll performs reactive current-page tracking for the
	// latest scroll position. Suppressed while a programmatic scroll
	// is in flight.
	HandleScroll()

	// ReportContainerWidth feeds a container width sample into the
	// debounced auto-fit computation.
	ReportContainerWidth(width float64)

	// ZoomIn, ZoomOut and ResetZoom adjust the zoom manually,
	// bypassing the auto-fit gates. They return the applied zoom.
	ZoomIn() float64
	ZoomOut() float64
	ResetZoom() float64

	// Outline returns the resolved outline. ok is false when the
	// document has no outline at all, which is distinct from an
	// outline containing defaulted entries.
	Outline() (entries []domain.ResolvedOutlineEntry, ok bool)

	// SetHighlightMode toggles highlight capture mode.
	SetHighlightMode(on bool)

	// HighlightMode reports whether highlight capture mode is active.
	HighlightMode() bool

	// CaptureSelection converts a live selection into a stored
	// highlight annotation. It is a no-op (nil, nil) when highlight
	// mode is off, the selection is empty, or no page contains it.
	// A successful capture clears highlight mode.
	CaptureSelection(ctx context.Context, sel domain.Selection) (*domain.Annotation, error)

	// RequestFloatingPanel computes a collision-avoiding placement for
	// a panel anchored to a viewport point.
	RequestFloatingPanel(req domain.PanelRequest) domain.PlacedPanel

	// OnCurrentPageChange registers a callback fired whenever the
	// current page changes.
	OnCurrentPageChange(fn func(page int))

	// OnAnnotationActivated registers a callback fired when an
	// annotation is activated.
	OnAnnotationActivated(fn func(domain.Annotation))

	// OnZoomChange registers a callback fired with every applied zoom.
	OnZoomChange(fn func(zoom float64))

	// AttachViewport hands the viewer the host's scrollable container.
	AttachViewport(vp driven.Viewport)

	// AttachPageSurface registers a mounted page's render target;
	// DetachPageSurface drops it on unmount.
	AttachPageSurface(surface driven.PageSurface)
	DetachPageSurface(page int)

	// PageIntrinsicSize reports a page's native size at scale 1,
	// recording it in the geometry registry.
	PageIntrinsicSize(ctx context.Context, page int) (domain.Size, error)

	// Geometry returns the recorded geometry for a page.
	Geometry(page int) (domain.PageGeometry, bool)

	// RequestPages schedules background rendering for the given pages.
	RequestPages(ctx context.Context, pages ...int)

	// Raster returns a cached page raster.
	Raster(page int) (driven.PageRaster, bool)

	// OnRaster registers a callback fired when a page raster becomes
	// available.
	OnRaster(fn func(page int))

	// Close releases the loaded document.
	Close() error
}

// AnnotationService manages the annotations of the open paper.
type AnnotationService interface {
	// List returns the annotations for a paper.
	List(ctx context.Context, paperID string) ([]domain.Annotation, error)

	// UpdateComment replaces the comment of an annotation.
	UpdateComment(ctx context.Context, id, comment string) error

	// Delete removes an annotation.
	Delete(ctx context.Context, id string) error

	// Activate scrolls to the annotation's page and notifies the
	// host's activation callback.
	Activate(ctx context.Context, id string) error
}
