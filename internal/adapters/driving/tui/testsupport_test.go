package tui

import (
	"context"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// fakeViewer records calls and serves canned viewer state.
type fakeViewer struct {
	doc     domain.Document
	hasDoc  bool
	loadErr error
	state   domain.ViewportState

	outline    []domain.ResolvedOutlineEntry
	hasOutline bool

	highlight bool

	widths     []float64
	scrolledTo []int
	zoomIns    int
	zoomOuts   int
	zoomResets int

	viewport driven.Viewport
	surfaces map[int]driven.PageSurface

	onPage      func(int)
	onZoom      func(float64)
	onRaster    func(int)
	onActivated func(domain.Annotation)
}

var _ driving.ViewerService = (*fakeViewer)(nil)

func newFakeViewer() *fakeViewer {
	return &fakeViewer{surfaces: make(map[int]driven.PageSurface)}
}

func (f *fakeViewer) LoadDocument(ctx context.Context, paperID, source string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.doc = domain.Document{PaperID: paperID, Source: source, PageCount: f.doc.PageCount}
	f.hasDoc = true
	return nil
}

func (f *fakeViewer) Document() (domain.Document, bool) { return f.doc, f.hasDoc }

func (f *fakeViewer) LoadError() error { return f.loadErr }

func (f *fakeViewer) State() domain.ViewportState { return f.state }

func (f *fakeViewer) ScrollToPage(page int) { f.scrolledTo = append(f.scrolledTo, page) }

func (f *fakeViewer) HandleScroll() {}

func (f *fakeViewer) ReportContainerWidth(width float64) { f.widths = append(f.widths, width) }

func (f *fakeViewer) ZoomIn() float64 {
	f.zoomIns++
	return 1.25
}

func (f *fakeViewer) ZoomOut() float64 {
	f.zoomOuts++
	return 0.75
}

func (f *fakeViewer) ResetZoom() float64 {
	f.zoomResets++
	return 1.0
}

func (f *fakeViewer) Outline() ([]domain.ResolvedOutlineEntry, bool) {
	return f.outline, f.hasOutline
}

func (f *fakeViewer) SetHighlightMode(on bool) { f.highlight = on }

func (f *fakeViewer) HighlightMode() bool { return f.highlight }

func (f *fakeViewer) CaptureSelection(ctx context.Context, sel domain.Selection) (*domain.Annotation, error) {
	return nil, nil
}

func (f *fakeViewer) RequestFloatingPanel(req domain.PanelRequest) domain.PlacedPanel {
	return domain.PlacedPanel{X: req.Anchor.X, Y: req.Anchor.Y}
}

func (f *fakeViewer) OnCurrentPageChange(fn func(page int)) { f.onPage = fn }

func (f *fakeViewer) OnAnnotationActivated(fn func(domain.Annotation)) { f.onActivated = fn }

func (f *fakeViewer) OnZoomChange(fn func(zoom float64)) { f.onZoom = fn }

func (f *fakeViewer) AttachViewport(vp driven.Viewport) { f.viewport = vp }

func (f *fakeViewer) AttachPageSurface(surface driven.PageSurface) {
	f.surfaces[surface.Page()] = surface
}

func (f *fakeViewer) DetachPageSurface(page int) { delete(f.surfaces, page) }

func (f *fakeViewer) PageIntrinsicSize(ctx context.Context, page int) (domain.Size, error) {
	return domain.Size{Width: 80, Height: 54}, nil
}

func (f *fakeViewer) Geometry(page int) (domain.PageGeometry, bool) {
	return domain.PageGeometry{}, false
}

func (f *fakeViewer) RequestPages(ctx context.Context, pages ...int) {}

func (f *fakeViewer) Raster(page int) (driven.PageRaster, bool) { return nil, false }

func (f *fakeViewer) OnRaster(fn func(page int)) { f.onRaster = fn }

func (f *fakeViewer) Close() error { return nil }

// fakeAnnotationService serves a canned annotation list.
type fakeAnnotationService struct {
	list []domain.Annotation
	err  error
}

var _ driving.AnnotationService = (*fakeAnnotationService)(nil)

func (f *fakeAnnotationService) List(ctx context.Context, paperID string) ([]domain.Annotation, error) {
	return f.list, f.err
}

func (f *fakeAnnotationService) UpdateComment(ctx context.Context, id, comment string) error {
	return f.err
}

func (f *fakeAnnotationService) Delete(ctx context.Context, id string) error { return f.err }

func (f *fakeAnnotationService) Activate(ctx context.Context, id string) error { return f.err }
