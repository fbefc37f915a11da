package reader

import (
	"context"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// fakeRaster is a canned page raster.
type fakeRaster struct {
	page int
	text string
}

func (r *fakeRaster) Page() int         { return r.page }
func (r *fakeRaster) Size() domain.Size { return domain.Size{Width: 80, Height: 3} }
func (r *fakeRaster) Text() string      { return r.text }

// fakeViewer records calls and serves canned state.
type fakeViewer struct {
	doc    domain.Document
	hasDoc bool
	state  domain.ViewportState

	rasters map[int]driven.PageRaster

	attached  map[int]driven.PageSurface
	detached  []int
	scrolls   int
	scrolledTo []int
	requested [][]int

	highlight  bool
	captured   []domain.Selection
	captureAnn *domain.Annotation
	captureErr error

	placement domain.PlacedPanel
}

var _ driving.ViewerService = (*fakeViewer)(nil)

func newFakeViewer() *fakeViewer {
	return &fakeViewer{
		rasters:  make(map[int]driven.PageRaster),
		attached: make(map[int]driven.PageSurface),
	}
}

func (f *fakeViewer) LoadDocument(ctx context.Context, paperID, source string) error { return nil }

func (f *fakeViewer) Document() (domain.Document, bool) { return f.doc, f.hasDoc }

func (f *fakeViewer) LoadError() error { return nil }

func (f *fakeViewer) State() domain.ViewportState { return f.state }

func (f *fakeViewer) ScrollToPage(page int) { f.scrolledTo = append(f.scrolledTo, page) }

func (f *fakeViewer) HandleScroll() { f.scrolls++ }

func (f *fakeViewer) ReportContainerWidth(width float64) {}

func (f *fakeViewer) ZoomIn() float64    { return 1.25 }
func (f *fakeViewer) ZoomOut() float64   { return 0.75 }
func (f *fakeViewer) ResetZoom() float64 { return 1.0 }

func (f *fakeViewer) Outline() ([]domain.ResolvedOutlineEntry, bool) { return nil, false }

func (f *fakeViewer) SetHighlightMode(on bool) { f.highlight = on }

func (f *fakeViewer) HighlightMode() bool { return f.highlight }

func (f *fakeViewer) CaptureSelection(ctx context.Context, sel domain.Selection) (*domain.Annotation, error) {
	f.captured = append(f.captured, sel)
	return f.captureAnn, f.captureErr
}

func (f *fakeViewer) RequestFloatingPanel(req domain.PanelRequest) domain.PlacedPanel {
	return f.placement
}

func (f *fakeViewer) OnCurrentPageChange(fn func(page int))             {}
func (f *fakeViewer) OnAnnotationActivated(fn func(domain.Annotation)) {}
func (f *fakeViewer) OnZoomChange(fn func(zoom float64))               {}

func (f *fakeViewer) AttachViewport(vp driven.Viewport) {}

func (f *fakeViewer) AttachPageSurface(surface driven.PageSurface) {
	f.attached[surface.Page()] = surface
}

func (f *fakeViewer) DetachPageSurface(page int) {
	delete(f.attached, page)
	f.detached = append(f.detached, page)
}

func (f *fakeViewer) PageIntrinsicSize(ctx context.Context, page int) (domain.Size, error) {
	return domain.Size{Width: 80, Height: 3}, nil
}

func (f *fakeViewer) Geometry(page int) (domain.PageGeometry, bool) {
	return domain.PageGeometry{}, false
}

func (f *fakeViewer) RequestPages(ctx context.Context, pages ...int) {
	f.requested = append(f.requested, pages)
}

func (f *fakeViewer) Raster(page int) (driven.PageRaster, bool) {
	r, ok := f.rasters[page]
	return r, ok
}

func (f *fakeViewer) OnRaster(fn func(page int)) {}

func (f *fakeViewer) Close() error { return nil }
