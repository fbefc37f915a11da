package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
	"github.com/custodia-labs/papyr/internal/logger"
)

// Ensure Viewer implements the driving port.
var _ driving.ViewerService = (*Viewer)(nil)

// defaultRenderBudget bounds background page rendering.
const (
	defaultRenderRate  rate.Limit = 8
	defaultRenderBurst            = 2
)

// Viewer orchestrates the viewer core for a single document at a
// time. All mutable navigation state lives on the instance; lifecycle
// is tied to the hosting view's mount/unmount.
type Viewer struct {
	mu sync.Mutex

	renderer driven.PageRenderer
	store    driven.AnnotationStore
	clock    driven.Clock

	registry  *GeometryRegistry
	zoom      *ZoomController
	scroll    *ScrollSynchronizer
	capture   *SelectionCapture
	resolver  *OutlineResolver
	scheduler *RenderScheduler

	viewport driven.Viewport

	// generation tags every async operation with the document
	// identity it was issued for; stale results are discarded.
	generation uint64

	doc        *domain.Document
	rendered   driven.RenderedDocument
	outline    []domain.ResolvedOutlineEntry
	hasOutline bool
	highlight  bool
	loadErr    error

	onActivated []func(domain.Annotation)
}

// NewViewer wires a viewer instance from its collaborators. The
// layout observer is optional.
func NewViewer(renderer driven.PageRenderer, store driven.AnnotationStore, clock driven.Clock, layout driven.LayoutObserver) *Viewer {
	registry := NewGeometryRegistry(clock, layout)
	v := &Viewer{
		renderer:  renderer,
		store:     store,
		clock:     clock,
		registry:  registry,
		zoom:      NewZoomController(registry, clock),
		scroll:    NewScrollSynchronizer(registry, clock),
		capture:   NewSelectionCapture(registry),
		resolver:  NewOutlineResolver(),
		scheduler: NewRenderScheduler(defaultRenderRate, defaultRenderBurst),
	}
	return v
}

// AttachViewport hands the viewer the host's scrollable container.
func (v *Viewer) AttachViewport(vp driven.Viewport) {
	v.mu.Lock()
	v.viewport = vp
	v.mu.Unlock()
	v.scroll.AttachViewport(vp)
}

// LoadDocument loads the document for the given paper. All viewer
// state is reset before the load starts, so an in-flight result for a
// previous identity can never land on the new one.
func (v *Viewer) LoadDocument(ctx context.Context, paperID, source string) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	old := v.rendered
	v.rendered = nil
	v.doc = nil
	v.loadErr = nil
	v.outline = nil
	v.hasOutline = false
	v.highlight = false
	v.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			logger.Warn("closing previous document: %v", err)
		}
	}
	v.registry.Reset()
	v.scroll.Reset()
	v.zoom.ResetForDocument()
	v.scheduler.SetDocument(nil, gen)

	logger.Debug("loading document %q for paper %q", source, paperID)
	rd, err := v.renderer.Load(ctx, source)

	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		if rd != nil {
			rd.Close()
		}
		return domain.ErrStaleGeneration
	}
	if err != nil {
		v.loadErr = fmt.Errorf("%w: %v", domain.ErrLoadFailed, err)
		loadErr := v.loadErr
		v.mu.Unlock()
		return loadErr
	}
	v.rendered = rd
	v.doc = &domain.Document{PaperID: paperID, Source: source, PageCount: rd.PageCount()}
	v.mu.Unlock()

	v.scroll.SetPageCount(rd.PageCount())
	v.scheduler.SetDocument(rd, gen)

	// Page 1's intrinsic size seeds the auto-fit computation.
	if size, err := rd.PageIntrinsicSize(ctx, 1); err == nil {
		if v.gen() == gen {
			v.registry.RegisterIntrinsicSize(1, size)
		}
	} else {
		logger.Warn("page 1 intrinsic size: %v", err)
	}

	v.resolveOutline(ctx, rd, gen)
	return nil
}

// resolveOutline fetches and resolves the outline, applying the
// result only if the document identity still matches.
func (v *Viewer) resolveOutline(ctx context.Context, rd driven.RenderedDocument, gen uint64) {
	raw, err := rd.Outline(ctx)
	if err != nil {
		// A missing outline is not a document failure.
		logger.Debug("outline unavailable: %v", err)
		return
	}
	resolved := v.resolver.Resolve(ctx, rd, raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return
	}
	v.outline = resolved
	v.hasOutline = len(raw) > 0
}

// Document returns the loaded document.
func (v *Viewer) Document() (domain.Document, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.doc == nil {
		return domain.Document{}, false
	}
	return *v.doc, true
}

// LoadError returns the last document-level load failure.
func (v *Viewer) LoadError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadErr
}

// State returns a snapshot of the navigation state.
func (v *Viewer) State() domain.ViewportState {
	v.mu.Lock()
	pageCount := 0
	if v.doc != nil {
		pageCount = v.doc.PageCount
	}
	v.mu.Unlock()

	return domain.ViewportState{
		CurrentPage:        v.scroll.CurrentPage(),
		PageCount:          pageCount,
		Zoom:               v.zoom.Zoom(),
		ProgrammaticScroll: v.scroll.ProgrammaticScrollActive(),
	}
}

// ScrollToPage starts a programmatic scroll to the target page.
func (v *Viewer) ScrollToPage(page int) {
	v.scroll.ScrollToPage(page)
}

// HandleScroll performs reactive current-page tracking.
func (v *Viewer) HandleScroll() {
	v.scroll.HandleScroll()
}

// ReportContainerWidth feeds a width sample into the debounced
// auto-fit computation.
func (v *Viewer) ReportContainerWidth(width float64) {
	v.zoom.ReportContainerWidth(width)
}

// ZoomIn increases the zoom by one step.
func (v *Viewer) ZoomIn() float64 { return v.zoom.ZoomIn() }

// ZoomOut decreases the zoom by one step.
func (v *Viewer) ZoomOut() float64 { return v.zoom.ZoomOut() }

// ResetZoom returns the zoom to 1.
func (v *Viewer) ResetZoom() float64 { return v.zoom.ResetZoom() }

// Outline returns the resolved outline; ok is false when the document
// has none.
func (v *Viewer) Outline() ([]domain.ResolvedOutlineEntry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.outline, v.hasOutline
}

// SetHighlightMode toggles highlight capture mode.
func (v *Viewer) SetHighlightMode(on bool) {
	v.mu.Lock()
	v.highlight = on
	v.mu.Unlock()
}

// HighlightMode reports whether highlight capture mode is active.
func (v *Viewer) HighlightMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlight
}

// CaptureSelection converts a live selection into a stored highlight.
// No-ops (nil, nil) when highlight mode is off, the selection is empty
// or outside any known page. A successful capture exits highlight
// mode.
func (v *Viewer) CaptureSelection(ctx context.Context, sel domain.Selection) (*domain.Annotation, error) {
	v.mu.Lock()
	if !v.highlight || v.doc == nil {
		v.mu.Unlock()
		return nil, nil
	}
	paperID := v.doc.PaperID
	v.mu.Unlock()

	a, ok := v.capture.Capture(sel)
	if !ok {
		return nil, nil
	}

	now := v.clock.Now()
	a.ID = uuid.NewString()
	a.PaperID = paperID
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := v.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("storing highlight: %w", err)
	}

	v.SetHighlightMode(false)
	logger.Debug("captured highlight on page %d", a.Page)
	return a, nil
}

// RequestFloatingPanel computes a collision-avoiding placement for a
// panel anchored to a viewport point.
func (v *Viewer) RequestFloatingPanel(req domain.PanelRequest) domain.PlacedPanel {
	v.mu.Lock()
	vp := v.viewport
	v.mu.Unlock()
	if vp == nil {
		return domain.PlacedPanel{X: req.Anchor.X, Y: req.Anchor.Y}
	}
	return PlacePanel(req, vp.Size())
}

// OnCurrentPageChange registers a current-page callback.
func (v *Viewer) OnCurrentPageChange(fn func(page int)) {
	v.scroll.OnCurrentPageChange(fn)
}

// OnAnnotationActivated registers an activation callback.
func (v *Viewer) OnAnnotationActivated(fn func(domain.Annotation)) {
	v.mu.Lock()
	v.onActivated = append(v.onActivated, fn)
	v.mu.Unlock()
}

// OnZoomChange registers a zoom callback.
func (v *Viewer) OnZoomChange(fn func(zoom float64)) {
	v.zoom.OnZoomChange(fn)
}

// AttachPageSurface registers a mounted page's render target.
func (v *Viewer) AttachPageSurface(surface driven.PageSurface) {
	v.registry.AttachSurface(surface)
}

// DetachPageSurface drops an unmounted page's render target.
func (v *Viewer) DetachPageSurface(page int) {
	v.registry.DetachSurface(page)
}

// PageIntrinsicSize reports a page's native size, registering it in
// the geometry registry as a side effect.
func (v *Viewer) PageIntrinsicSize(ctx context.Context, page int) (domain.Size, error) {
	v.mu.Lock()
	rd := v.rendered
	gen := v.generation
	v.mu.Unlock()
	if rd == nil {
		return domain.Size{}, domain.ErrDocumentNotLoaded
	}
	if page < 1 || page > rd.PageCount() {
		return domain.Size{}, domain.ErrPageOutOfRange
	}

	size, err := rd.PageIntrinsicSize(ctx, page)
	if err != nil {
		return domain.Size{}, fmt.Errorf("page %d intrinsic size: %w", page, err)
	}
	if v.gen() == gen {
		v.registry.RegisterIntrinsicSize(page, size)
	}
	return size, nil
}

// RequestPages asks the render scheduler for the given pages.
func (v *Viewer) RequestPages(ctx context.Context, pages ...int) {
	v.scheduler.Request(ctx, pages...)
}

// Raster returns a cached page raster.
func (v *Viewer) Raster(page int) (driven.PageRaster, bool) {
	return v.scheduler.Raster(page)
}

// OnRaster registers the callback fired when a page raster becomes
// available.
func (v *Viewer) OnRaster(fn func(page int)) {
	v.scheduler.OnRaster(fn)
}

// Geometry exposes the page geometry for a page.
func (v *Viewer) Geometry(page int) (domain.PageGeometry, bool) {
	return v.registry.Geometry(page)
}

// Close releases the loaded document and invalidates all in-flight
// async work.
func (v *Viewer) Close() error {
	v.mu.Lock()
	v.generation++
	rd := v.rendered
	v.rendered = nil
	v.doc = nil
	v.mu.Unlock()

	v.registry.Reset()
	v.scroll.Reset()
	if rd != nil {
		return rd.Close()
	}
	return nil
}

// notifyActivated fires the activation callbacks.
func (v *Viewer) notifyActivated(a domain.Annotation) {
	v.mu.Lock()
	listeners := append([]func(domain.Annotation){}, v.onActivated...)
	v.mu.Unlock()
	for _, fn := range listeners {
		fn(a)
	}
}

// gen returns the current document generation.
func (v *Viewer) gen() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}
