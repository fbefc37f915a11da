package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papyr/internal/core/domain"
)

type scrollFixture struct {
	sync     *ScrollSynchronizer
	registry *GeometryRegistry
	viewport *fakeViewport
	clock    *fakeClock
	changes  []int
}

// newScrollFixture mounts three stacked pages of height 400 in an
// 800-high viewport, page 1 starting at the viewport top.
func newScrollFixture(t *testing.T) *scrollFixture {
	t.Helper()
	clock := newFakeClock()
	registry := NewGeometryRegistry(clock, nil)
	s := NewScrollSynchronizer(registry, clock)

	f := &scrollFixture{sync: s, registry: registry, clock: clock}
	f.viewport = &fakeViewport{size: domain.Size{Width: 1200, Height: 800}}
	s.AttachViewport(f.viewport)
	s.SetPageCount(10)
	s.OnCurrentPageChange(func(p int) { f.changes = append(f.changes, p) })

	for i := 1; i <= 3; i++ {
		top := float64(i-1) * 400
		f.registry.AttachSurface(&fakeSurface{
			page:   i,
			bounds: domain.PageBox{Left: 0, Top: top, Width: 600, Height: 400},
		})
	}
	return f
}

func TestHandleScrollPicksNearestPageCenter(t *testing.T) {
	f := newScrollFixture(t)

	// Viewport center 400; page centers at 200, 600, 1000 → page 1
	// and 2 are equidistant, the lowest page wins the tie.
	f.sync.HandleScroll()
	assert.Equal(t, 1, f.sync.CurrentPage())
	assert.Empty(t, f.changes, "no notification when the page did not change")

	// Scroll so page 2's center is nearest.
	surface, ok := f.registry.Surface(2)
	require.True(t, ok)
	fs := surface.(*fakeSurface)
	fs.bounds.Top = 100

	f.sync.HandleScroll()
	assert.Equal(t, 2, f.sync.CurrentPage())
	assert.Equal(t, []int{2}, f.changes)
}

func TestHandleScrollSuppressedDuringProgrammaticScroll(t *testing.T) {
	f := newScrollFixture(t)

	f.sync.ScrollToPage(3)
	assert.True(t, f.sync.ProgrammaticScrollActive())

	f.sync.HandleScroll()
	assert.Equal(t, 1, f.sync.CurrentPage(), "reactive tracking is skipped while the guard is up")
}

func TestScrollToPageCentersTarget(t *testing.T) {
	f := newScrollFixture(t)
	f.viewport.scrollTop = 50

	f.sync.ScrollToPage(3)

	// scrollTop + pageBoxTop - viewportHeight/2 + pageBoxHeight/2
	// = 50 + 800 - 400 + 200 = 650.
	require.Len(t, f.viewport.scrolled(), 1)
	assert.InDelta(t, 650, f.viewport.scrolled()[0], 1e-9)
}

func TestScrollToPageClampsNegativeOffset(t *testing.T) {
	f := newScrollFixture(t)

	f.sync.ScrollToPage(1)

	// 0 + 0 - 400 + 200 = -200, clamped to 0.
	require.Len(t, f.viewport.scrolled(), 1)
	assert.Equal(t, 0.0, f.viewport.scrolled()[0])
}

func TestScrollToPageValidationNoOp(t *testing.T) {
	f := newScrollFixture(t)

	f.sync.ScrollToPage(0)
	f.sync.ScrollToPage(-4)
	f.sync.ScrollToPage(11)

	assert.Empty(t, f.viewport.scrolled())
	assert.False(t, f.sync.ProgrammaticScrollActive())
}

func TestScrollToPageRetriesUntilMounted(t *testing.T) {
	f := newScrollFixture(t)

	// Page 5 is not mounted yet.
	f.sync.ScrollToPage(5)
	assert.Empty(t, f.viewport.scrolled())

	// Mounts after two backoff intervals.
	f.clock.Advance(scrollRetryDelay)
	f.registry.AttachSurface(&fakeSurface{
		page:   5,
		bounds: domain.PageBox{Left: 0, Top: 1600, Width: 600, Height: 400},
	})
	f.clock.Advance(scrollRetryDelay)

	require.Len(t, f.viewport.scrolled(), 1)
	assert.InDelta(t, 0+1600-400+200, f.viewport.scrolled()[0], 1e-9)
}

func TestScrollToPageGivesUpSilently(t *testing.T) {
	f := newScrollFixture(t)

	f.sync.ScrollToPage(7)
	f.clock.Advance(10 * scrollRetryDelay)

	// Never mounted: no scroll, no panic, guard still clears.
	assert.Empty(t, f.viewport.scrolled())
	f.clock.Advance(programmaticGuardWindow)
	assert.False(t, f.sync.ProgrammaticScrollActive())
}

func TestGuardClearsAfterFixedWindowAndTracksSettledPosition(t *testing.T) {
	f := newScrollFixture(t)

	f.sync.ScrollToPage(3)
	assert.True(t, f.sync.ProgrammaticScrollActive())

	// Simulate the smooth scroll landing: page 3 centered.
	for i := 1; i <= 3; i++ {
		surface, _ := f.registry.Surface(i)
		fs := surface.(*fakeSurface)
		fs.bounds.Top = float64(i-1)*400 - 600
	}

	f.clock.Advance(programmaticGuardWindow)

	assert.False(t, f.sync.ProgrammaticScrollActive())
	assert.Equal(t, 3, f.sync.CurrentPage(), "settled position decides the current page")
	assert.Equal(t, []int{3}, f.changes)
}

func TestResetRestoresInitialState(t *testing.T) {
	f := newScrollFixture(t)
	f.sync.ScrollToPage(2)

	f.sync.Reset()

	assert.Equal(t, 1, f.sync.CurrentPage())
	assert.False(t, f.sync.ProgrammaticScrollActive())

	// Page count is gone: every target is now out of range.
	f.sync.ScrollToPage(2)
	f.clock.Advance(time.Second)
	assert.False(t, f.sync.ProgrammaticScrollActive())
}
