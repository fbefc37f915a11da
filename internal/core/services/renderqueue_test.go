package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRequestRendersAndCaches(t *testing.T) {
	s := NewRenderScheduler(rate.Inf, 1)
	doc := newFakeDocument(10)
	s.SetDocument(doc, 1)

	done := make(chan int, 8)
	s.OnRaster(func(page int) { done <- page })

	s.Request(context.Background(), 1, 2, 3)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		select {
		case p := <-done:
			seen[p] = true
		case <-time.After(waitTimeout):
			t.Fatalf("timed out waiting for rasters, got %v", seen)
		}
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)

	r, ok := s.Raster(2)
	require.True(t, ok)
	assert.Equal(t, 2, r.Page())
}

func TestRequestSkipsCachedAndOutOfRangePages(t *testing.T) {
	s := NewRenderScheduler(rate.Inf, 1)
	doc := newFakeDocument(5)
	s.SetDocument(doc, 1)

	done := make(chan int, 8)
	s.OnRaster(func(page int) { done <- page })

	s.Request(context.Background(), 2)
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for first raster")
	}

	// Cached, zero, negative and beyond-count pages are all skipped.
	s.Request(context.Background(), 2, 0, -1, 6)

	require.Eventually(t, func() bool {
		return len(doc.renderedPages()) >= 1
	}, waitTimeout, pollInterval)
	assert.Equal(t, []int{2}, doc.renderedPages())
}

func TestRequestWithoutDocumentNoOp(t *testing.T) {
	s := NewRenderScheduler(rate.Inf, 1)
	s.Request(context.Background(), 1, 2)

	_, ok := s.Raster(1)
	assert.False(t, ok)
}

func TestStaleGenerationRasterDiscarded(t *testing.T) {
	s := NewRenderScheduler(rate.Inf, 1)
	docA := newFakeDocument(5)
	docB := newFakeDocument(5)
	s.SetDocument(docA, 1)
	s.SetDocument(docB, 2)

	// A render issued for the old generation completes after the swap.
	s.render(context.Background(), docA, 3, 1)

	_, ok := s.Raster(3)
	assert.False(t, ok, "a raster from a swapped-out document must not land")
}

func TestSetDocumentDropsCache(t *testing.T) {
	s := NewRenderScheduler(rate.Inf, 1)
	docA := newFakeDocument(5)
	s.SetDocument(docA, 1)
	s.render(context.Background(), docA, 1, 1)

	_, ok := s.Raster(1)
	require.True(t, ok)

	s.SetDocument(newFakeDocument(5), 2)
	_, ok = s.Raster(1)
	assert.False(t, ok)
}
