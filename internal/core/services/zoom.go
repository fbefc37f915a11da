package services

import (
	"math"
	"sync"
	"time"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

const (
	// fitWidthInset is the horizontal margin subtracted from the
	// container width before computing the fit zoom.
	fitWidthInset = 40

	// widthNoiseGate suppresses fit recomputation for container width
	// reports within 10px of the last applied one.
	widthNoiseGate = 10

	// zoomHysteresis suppresses fit zoom changes smaller than 0.05.
	// Together with the noise gate it prevents oscillation from
	// sub-pixel layout churn.
	zoomHysteresis = 0.05

	autoFitMinZoom = 0.5
	autoFitMaxZoom = 2.0

	manualMinZoom  = 0.5
	manualMaxZoom  = 3.0
	manualZoomStep = 0.25

	// resizeDebounce coalesces container resize bursts; only the last
	// report in a 300ms window fires the fit computation.
	resizeDebounce = 300 * time.Millisecond
)

// ZoomController computes and applies auto-fit zoom from the container
// width and page 1's intrinsic size, and handles manual zoom. Every
// applied change invalidates the registry's measured sizes.
type ZoomController struct {
	mu       sync.Mutex
	clock    driven.Clock
	registry *GeometryRegistry

	zoom  float64
	page1 *domain.Size

	// lastFitWidth is the container width of the last applied fit
	// computation; NaN until one has been applied.
	lastFitWidth float64

	// lastReportedWidth is the most recent width report, kept so a
	// late-arriving page 1 size can still seed the fit.
	lastReportedWidth float64

	debounce  driven.Timer
	listeners []func(zoom float64)
}

// NewZoomController creates a controller at zoom 1 and registers
// itself as the registry's page 1 seed hook.
func NewZoomController(registry *GeometryRegistry, clock driven.Clock) *ZoomController {
	z := &ZoomController{
		clock:             clock,
		registry:          registry,
		zoom:              1,
		lastFitWidth:      math.NaN(),
		lastReportedWidth: math.NaN(),
	}
	registry.OnPage1Intrinsic(z.seedPage1)
	return z
}

// Zoom returns the applied zoom factor.
func (z *ZoomController) Zoom() float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.zoom
}

// OnZoomChange registers a listener fired with every applied zoom.
func (z *ZoomController) OnZoomChange(fn func(zoom float64)) {
	z.mu.Lock()
	z.listeners = append(z.listeners, fn)
	z.mu.Unlock()
}

// ReportContainerWidth feeds a width sample into the debounced fit
// computation. Only the last report of a 300ms burst fires.
func (z *ZoomController) ReportContainerWidth(width float64) {
	z.mu.Lock()
	z.lastReportedWidth = width
	if z.debounce != nil {
		z.debounce.Stop()
	}
	z.debounce = z.clock.AfterFunc(resizeDebounce, func() {
		z.FitToWidth(width)
	})
	z.mu.Unlock()
}

// FitToWidth applies the auto-fit zoom for the given container width.
// The computation is gated twice: the width must have moved more than
// 10px since the last applied fit, and the resulting zoom must differ
// from the current one by more than 0.05. Reports whether a zoom was
// applied.
func (z *ZoomController) FitToWidth(width float64) bool {
	z.mu.Lock()
	z.lastReportedWidth = width
	if z.page1 == nil || z.page1.Width <= 0 {
		z.mu.Unlock()
		return false
	}
	if !math.IsNaN(z.lastFitWidth) && math.Abs(width-z.lastFitWidth) <= widthNoiseGate {
		z.mu.Unlock()
		return false
	}
	fit := clampZoom((width-fitWidthInset)/z.page1.Width, autoFitMinZoom, autoFitMaxZoom)
	if math.Abs(fit-z.zoom) <= zoomHysteresis {
		z.mu.Unlock()
		return false
	}
	z.zoom = fit
	z.lastFitWidth = width
	listeners := append([]func(float64){}, z.listeners...)
	z.mu.Unlock()

	z.applied(fit, listeners)
	return true
}

// ZoomIn increases the zoom by one manual step, bypassing the fit
// gates, and returns the applied zoom.
func (z *ZoomController) ZoomIn() float64 {
	return z.setManual(func(cur float64) float64 { return cur + manualZoomStep })
}

// ZoomOut decreases the zoom by one manual step and returns the
// applied zoom.
func (z *ZoomController) ZoomOut() float64 {
	return z.setManual(func(cur float64) float64 { return cur - manualZoomStep })
}

// ResetZoom returns the zoom to 1.
func (z *ZoomController) ResetZoom() float64 {
	return z.setManual(func(float64) float64 { return 1 })
}

// ResetForDocument clears document-scoped state for a swap: zoom back
// to 1 and no applied fit. The last reported width is kept so the new
// document's page 1 can seed a fresh fit.
func (z *ZoomController) ResetForDocument() {
	z.mu.Lock()
	if z.debounce != nil {
		z.debounce.Stop()
		z.debounce = nil
	}
	z.zoom = 1
	z.page1 = nil
	z.lastFitWidth = math.NaN()
	z.mu.Unlock()
}

// seedPage1 records page 1's intrinsic size and, when a container
// width has already been reported, computes the initial fit.
func (z *ZoomController) seedPage1(size domain.Size) {
	z.mu.Lock()
	s := size
	z.page1 = &s
	width := z.lastReportedWidth
	z.mu.Unlock()

	if !math.IsNaN(width) {
		z.FitToWidth(width)
	}
}

func (z *ZoomController) setManual(next func(float64) float64) float64 {
	z.mu.Lock()
	applied := clampZoom(next(z.zoom), manualMinZoom, manualMaxZoom)
	if applied == z.zoom {
		z.mu.Unlock()
		return applied
	}
	z.zoom = applied
	listeners := append([]func(float64){}, z.listeners...)
	z.mu.Unlock()

	z.applied(applied, listeners)
	return applied
}

// applied runs the downstream reactions of a zoom change: measured
// sizes are stale until re-populated after the settle delay.
func (z *ZoomController) applied(zoom float64, listeners []func(float64)) {
	z.registry.InvalidateMeasured()
	for _, fn := range listeners {
		fn(zoom)
	}
}

func clampZoom(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
