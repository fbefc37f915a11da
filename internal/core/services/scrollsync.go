package services

import (
	"math"
	"sync"
	"time"

	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

const (
	// scrollRetryDelay is the backoff between attempts to locate a
	// not-yet-mounted target page.
	scrollRetryDelay = 150 * time.Millisecond

	// scrollRetryLimit bounds the retries after the initial attempt.
	// Lazily-rendered pages may never mount in time; giving up is a
	// silent no-op, not an error.
	scrollRetryLimit = 3

	// programmaticGuardWindow is how long reactive page tracking stays
	// suppressed after a programmatic scroll starts. A fixed window is
	// used because scroll-animation completion signals are unreliable.
	programmaticGuardWindow = 1000 * time.Millisecond
)

// ScrollSynchronizer keeps the scroll offset and the current page in
// sync in both directions. The programmatic guard makes the two
// directions mutually exclusive so they never fight over the current
// page.
type ScrollSynchronizer struct {
	mu       sync.Mutex
	registry *GeometryRegistry
	viewport driven.Viewport
	clock    driven.Clock

	pageCount    int
	currentPage  int
	programmatic bool

	guardTimer driven.Timer
	retryTimer driven.Timer

	listeners []func(page int)
}

// NewScrollSynchronizer creates a synchronizer starting at page 1.
func NewScrollSynchronizer(registry *GeometryRegistry, clock driven.Clock) *ScrollSynchronizer {
	return &ScrollSynchronizer{
		registry:    registry,
		clock:       clock,
		currentPage: 1,
	}
}

// AttachViewport hands the synchronizer the scrollable container.
func (s *ScrollSynchronizer) AttachViewport(vp driven.Viewport) {
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()
}

// SetPageCount sets the loaded document's page count.
func (s *ScrollSynchronizer) SetPageCount(n int) {
	s.mu.Lock()
	s.pageCount = n
	s.mu.Unlock()
}

// CurrentPage returns the page deemed in view.
func (s *ScrollSynchronizer) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// ProgrammaticScrollActive reports whether a scroll-to-page is in
// flight.
func (s *ScrollSynchronizer) ProgrammaticScrollActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programmatic
}

// OnCurrentPageChange registers a callback fired when the current
// page changes.
func (s *ScrollSynchronizer) OnCurrentPageChange(fn func(page int)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Reset clears navigation state for a document swap.
func (s *ScrollSynchronizer) Reset() {
	s.mu.Lock()
	if s.guardTimer != nil {
		s.guardTimer.Stop()
		s.guardTimer = nil
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.pageCount = 0
	s.currentPage = 1
	s.programmatic = false
	s.mu.Unlock()
}

// HandleScroll performs reactive current-page tracking: the mounted
// page whose center is closest to the viewport's vertical center
// becomes current, ties going to the lowest page number. Skipped
// entirely while a programmatic scroll is in flight.
func (s *ScrollSynchronizer) HandleScroll() {
	s.mu.Lock()
	if s.programmatic || s.viewport == nil {
		s.mu.Unlock()
		return
	}
	vp := s.viewport
	s.mu.Unlock()

	center := vp.Size().Height / 2

	best := 0
	bestDist := math.Inf(1)
	for _, page := range s.registry.MountedPages() {
		surface, ok := s.registry.Surface(page)
		if !ok {
			continue
		}
		box := surface.Bounds()
		if box.IsZero() {
			continue
		}
		// Strict comparison: on an exact tie the first (lowest) page
		// wins. This is a deliberate, tested policy.
		if d := math.Abs(box.VerticalCenter() - center); d < bestDist {
			best = page
			bestDist = d
		}
	}
	if best == 0 {
		return
	}

	s.mu.Lock()
	if best == s.currentPage {
		s.mu.Unlock()
		return
	}
	s.currentPage = best
	listeners := append([]func(int){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(best)
	}
}

// ScrollToPage starts a programmatic scroll that centers the target
// page in the viewport. Targets outside [1, pageCount] are a
// validation no-op. A target page that never mounts within the retry
// budget is silently not scrolled to.
func (s *ScrollSynchronizer) ScrollToPage(target int) {
	s.mu.Lock()
	if target < 1 || target > s.pageCount || s.viewport == nil {
		s.mu.Unlock()
		return
	}
	s.programmatic = true
	if s.guardTimer != nil {
		s.guardTimer.Stop()
	}
	s.guardTimer = s.clock.AfterFunc(programmaticGuardWindow, s.clearGuard)
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.mu.Unlock()

	s.attemptScroll(target, 0)
}

func (s *ScrollSynchronizer) attemptScroll(target, attempt int) {
	surface, ok := s.registry.Surface(target)
	if !ok {
		if attempt >= scrollRetryLimit {
			return
		}
		s.mu.Lock()
		s.retryTimer = s.clock.AfterFunc(scrollRetryDelay, func() {
			s.attemptScroll(target, attempt+1)
		})
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	vp := s.viewport
	s.mu.Unlock()
	if vp == nil {
		return
	}

	box := surface.Bounds()
	viewportHeight := vp.Size().Height

	// Center the page: box.Top is already viewport-relative, so it is
	// the (pageBoxTop - viewportTop) term.
	top := vp.ScrollTop() + box.Top - viewportHeight/2 + box.Height/2
	if top < 0 {
		top = 0
	}
	vp.ScrollTo(top, true)
}

func (s *ScrollSynchronizer) clearGuard() {
	s.mu.Lock()
	s.programmatic = false
	s.guardTimer = nil
	s.mu.Unlock()

	// The settled position decides the current page.
	s.HandleScroll()
}
