package services

import (
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// measureSettleDelay is how long layout is given to settle after a
// zoom change or page (re)render before measured sizes are refreshed.
const measureSettleDelay = 150 * time.Millisecond

// pageRecord is the registry's per-page bookkeeping. The surface is a
// weak handle: it is detached when the page unmounts and never
// outlives it.
type pageRecord struct {
	intrinsic     domain.Size
	hasIntrinsic  bool
	measured      *domain.Size
	surface       driven.PageSurface
	cancelObserve func()
}

// GeometryRegistry tracks per-page intrinsic sizes, measured on-screen
// sizes and live surface handles. It is the ground truth every pixel
// projection reads from.
type GeometryRegistry struct {
	mu     sync.RWMutex
	clock  driven.Clock
	layout driven.LayoutObserver
	pages  map[int]*pageRecord
	settle driven.Timer

	// onPage1Intrinsic seeds the zoom controller's fit computation.
	onPage1Intrinsic func(domain.Size)
}

// NewGeometryRegistry creates an empty registry. The layout observer
// is optional; when present, attached surfaces are observed for
// layout size changes.
func NewGeometryRegistry(clock driven.Clock, layout driven.LayoutObserver) *GeometryRegistry {
	return &GeometryRegistry{
		clock:  clock,
		layout: layout,
		pages:  make(map[int]*pageRecord),
	}
}

// OnPage1Intrinsic registers the hook invoked when page 1's intrinsic
// size is reported.
func (r *GeometryRegistry) OnPage1Intrinsic(fn func(domain.Size)) {
	r.mu.Lock()
	r.onPage1Intrinsic = fn
	r.mu.Unlock()
}

// RegisterIntrinsicSize records a page's native size at scale 1.
// Last write replaces: pages can reflow.
func (r *GeometryRegistry) RegisterIntrinsicSize(page int, size domain.Size) {
	if page < 1 || size.IsZero() {
		return
	}
	r.mu.Lock()
	rec := r.record(page)
	rec.intrinsic = size
	rec.hasIntrinsic = true
	seed := r.onPage1Intrinsic
	r.mu.Unlock()

	if page == 1 && seed != nil {
		seed(size)
	}
}

// UpdateMeasuredSize records a page's actual on-screen size. Writes
// are deduplicated: an unchanged size is a no-op so downstream
// reactions don't fire redundantly. Reports whether the value changed.
func (r *GeometryRegistry) UpdateMeasuredSize(page int, size domain.Size) bool {
	if page < 1 || size.IsZero() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.record(page)
	if rec.measured != nil && *rec.measured == size {
		return false
	}
	s := size
	rec.measured = &s
	return true
}

// AttachSurface hands the registry the live render target for a
// mounted page and begins observing it for layout size changes.
func (r *GeometryRegistry) AttachSurface(surface driven.PageSurface) {
	if surface == nil {
		return
	}
	page := surface.Page()
	if page < 1 {
		return
	}
	r.mu.Lock()
	rec := r.record(page)
	if rec.cancelObserve != nil {
		rec.cancelObserve()
		rec.cancelObserve = nil
	}
	rec.surface = surface
	if r.layout != nil {
		rec.cancelObserve = r.layout.Observe(surface, func(size domain.Size) {
			r.UpdateMeasuredSize(page, size)
		})
	}
	r.mu.Unlock()

	// A freshly mounted page needs its measured size once layout
	// settles.
	r.ScheduleRemeasure()
}

// DetachSurface drops the surface handle for an unmounted page.
func (r *GeometryRegistry) DetachSurface(page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.pages[page]
	if !ok {
		return
	}
	if rec.cancelObserve != nil {
		rec.cancelObserve()
		rec.cancelObserve = nil
	}
	rec.surface = nil
}

// Surface returns the live surface for a mounted page.
func (r *GeometryRegistry) Surface(page int) (driven.PageSurface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pages[page]
	if !ok || rec.surface == nil {
		return nil, false
	}
	return rec.surface, true
}

// MountedPages returns the pages with live surfaces in ascending
// order. The ordering is what makes current-page ties deterministic.
func (r *GeometryRegistry) MountedPages() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pages := make([]int, 0, len(r.pages))
	for p, rec := range r.pages {
		if rec.surface != nil {
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// Geometry returns the recorded geometry for a page.
func (r *GeometryRegistry) Geometry(page int) (domain.PageGeometry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pages[page]
	if !ok || !rec.hasIntrinsic {
		return domain.PageGeometry{}, false
	}
	g := domain.PageGeometry{Page: page, Intrinsic: rec.intrinsic}
	if rec.measured != nil {
		m := *rec.measured
		g.Measured = &m
	}
	return g, true
}

// ProjectedSize returns the pixel-projection size for a page at the
// given zoom: measured when present, else intrinsic × zoom.
func (r *GeometryRegistry) ProjectedSize(page int, zoom float64) (domain.Size, bool) {
	g, ok := r.Geometry(page)
	if !ok {
		return domain.Size{}, false
	}
	return g.ProjectedSize(zoom), true
}

// InvalidateMeasured drops every measured size. Called on zoom change:
// annotation projection must not be trusted again until measured sizes
// are re-populated after the settle delay.
func (r *GeometryRegistry) InvalidateMeasured() {
	r.mu.Lock()
	for _, rec := range r.pages {
		rec.measured = nil
	}
	r.mu.Unlock()
	r.ScheduleRemeasure()
}

// ScheduleRemeasure refreshes measured sizes from the mounted
// surfaces after the settle delay. A pending refresh is replaced.
func (r *GeometryRegistry) ScheduleRemeasure() {
	r.mu.Lock()
	if r.settle != nil {
		r.settle.Stop()
	}
	r.settle = r.clock.AfterFunc(measureSettleDelay, r.remeasureMounted)
	r.mu.Unlock()
}

// Reset discards all geometry for a document swap.
func (r *GeometryRegistry) Reset() {
	r.mu.Lock()
	if r.settle != nil {
		r.settle.Stop()
		r.settle = nil
	}
	for _, rec := range r.pages {
		if rec.cancelObserve != nil {
			rec.cancelObserve()
		}
	}
	r.pages = make(map[int]*pageRecord)
	r.mu.Unlock()
}

func (r *GeometryRegistry) remeasureMounted() {
	for _, page := range r.MountedPages() {
		surface, ok := r.Surface(page)
		if !ok {
			continue
		}
		box := surface.Bounds()
		if box.IsZero() {
			continue
		}
		r.UpdateMeasuredSize(page, box.Size())
	}
}

// record returns the page's record, creating it if needed.
// Caller must hold the write lock.
func (r *GeometryRegistry) record(page int) *pageRecord {
	rec, ok := r.pages[page]
	if !ok {
		rec = &pageRecord{}
		r.pages[page] = rec
	}
	return rec
}
