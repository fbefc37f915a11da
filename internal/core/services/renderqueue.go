package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/logger"
)

// RenderScheduler renders pages near the viewport ahead of scroll.
// Render requests are bounded by a rate limiter so fast scrolling
// cannot flood the renderer, and every completed raster is applied
// only if the document generation it was rendered for is still
// current.
type RenderScheduler struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	doc        driven.RenderedDocument
	generation uint64
	rasters    map[int]driven.PageRaster
	inflight   map[int]bool
	onRaster   func(page int)
}

// NewRenderScheduler creates a scheduler rendering at most perSecond
// pages per second with the given burst.
func NewRenderScheduler(perSecond rate.Limit, burst int) *RenderScheduler {
	return &RenderScheduler{
		limiter:  rate.NewLimiter(perSecond, burst),
		rasters:  make(map[int]driven.PageRaster),
		inflight: make(map[int]bool),
	}
}

// OnRaster registers the callback fired when a page raster becomes
// available.
func (s *RenderScheduler) OnRaster(fn func(page int)) {
	s.mu.Lock()
	s.onRaster = fn
	s.mu.Unlock()
}

// SetDocument swaps the scheduler to a new document generation,
// discarding all cached rasters. In-flight renders for the previous
// generation are dropped when they complete.
func (s *RenderScheduler) SetDocument(doc driven.RenderedDocument, generation uint64) {
	s.mu.Lock()
	s.doc = doc
	s.generation = generation
	s.rasters = make(map[int]driven.PageRaster)
	s.inflight = make(map[int]bool)
	s.mu.Unlock()
}

// Raster returns the cached raster for a page.
func (s *RenderScheduler) Raster(page int) (driven.PageRaster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rasters[page]
	return r, ok
}

// Request asks for the given pages to be rendered. Pages already
// rendered or in flight are skipped.
func (s *RenderScheduler) Request(ctx context.Context, pages ...int) {
	s.mu.Lock()
	doc := s.doc
	gen := s.generation
	if doc == nil {
		s.mu.Unlock()
		return
	}
	pageCount := doc.PageCount()
	var todo []int
	for _, p := range pages {
		if p < 1 || p > pageCount || s.inflight[p] {
			continue
		}
		if _, ok := s.rasters[p]; ok {
			continue
		}
		s.inflight[p] = true
		todo = append(todo, p)
	}
	s.mu.Unlock()

	for _, p := range todo {
		go s.render(ctx, doc, p, gen)
	}
}

func (s *RenderScheduler) render(ctx context.Context, doc driven.RenderedDocument, page int, gen uint64) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, page)
		s.mu.Unlock()
	}()

	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	raster, err := doc.RenderPage(ctx, page)
	if err != nil {
		logger.Warn("rendering page %d: %v", page, err)
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		// The document was swapped while this render was in flight.
		s.mu.Unlock()
		return
	}
	s.rasters[page] = raster
	notify := s.onRaster
	s.mu.Unlock()

	if notify != nil {
		notify(page)
	}
}
