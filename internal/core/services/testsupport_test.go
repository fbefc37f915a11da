package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// Polling bounds for tests that wait on real goroutines.
const (
	waitTimeout  = 2 * time.Second
	pollInterval = 5 * time.Millisecond
)

// --- Fake clock ---

// fakeTimer is a pending fakeClock.AfterFunc call.
type fakeTimer struct {
	clock   *fakeClock
	fn      func()
	when    time.Time
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock drives timers manually so settle delays, debounce windows
// and guard timers can be tested deterministically.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) driven.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, fn: fn, when: c.now.Add(d)}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.nextDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

func (c *fakeClock) nextDue() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var due *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.when.After(c.now) {
			continue
		}
		if due == nil || t.when.Before(due.when) {
			due = t
		}
	}
	if due != nil {
		due.fired = true
	}
	return due
}

// --- Fake surfaces and viewport ---

// fakeSurface implements driven.PageSurface with mutable bounds.
type fakeSurface struct {
	page    int
	bounds  domain.PageBox
	content *domain.PageBox
	anchor  any
}

func (s *fakeSurface) Page() int { return s.page }

func (s *fakeSurface) Bounds() domain.PageBox { return s.bounds }

func (s *fakeSurface) ContentBounds() (domain.PageBox, bool) {
	if s.content == nil {
		return domain.PageBox{}, false
	}
	return *s.content, true
}

func (s *fakeSurface) ContainsAnchor(anchor any) bool {
	return s.anchor != nil && s.anchor == anchor
}

// fakeViewport implements driven.Viewport and records scrolls.
type fakeViewport struct {
	mu        sync.Mutex
	size      domain.Size
	scrollTop float64
	scrolls   []float64
}

func (v *fakeViewport) Size() domain.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

func (v *fakeViewport) ScrollTop() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollTop
}

func (v *fakeViewport) ScrollTo(top float64, _ bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTop = top
	v.scrolls = append(v.scrolls, top)
}

func (v *fakeViewport) scrolled() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64{}, v.scrolls...)
}

// --- Fake renderer ---

// fakeRaster implements driven.PageRaster.
type fakeRaster struct {
	page int
	size domain.Size
	text string
}

func (r *fakeRaster) Page() int         { return r.page }
func (r *fakeRaster) Size() domain.Size { return r.size }
func (r *fakeRaster) Text() string      { return r.text }

// fakeDocument implements driven.RenderedDocument.
type fakeDocument struct {
	mu        sync.Mutex
	pageCount int
	sizes     map[int]domain.Size
	outline   []domain.OutlineEntry
	named     map[string]any
	pageIndex func(ref any) (int, error)
	rendered  []int
	closed    bool
}

func newFakeDocument(pages int) *fakeDocument {
	return &fakeDocument{
		pageCount: pages,
		sizes:     make(map[int]domain.Size),
		named:     make(map[string]any),
	}
}

func (d *fakeDocument) PageCount() int { return d.pageCount }

func (d *fakeDocument) Outline(context.Context) ([]domain.OutlineEntry, error) {
	return d.outline, nil
}

func (d *fakeDocument) PageIntrinsicSize(_ context.Context, page int) (domain.Size, error) {
	if s, ok := d.sizes[page]; ok {
		return s, nil
	}
	return domain.Size{Width: 612, Height: 792}, nil
}

func (d *fakeDocument) RenderPage(_ context.Context, page int) (driven.PageRaster, error) {
	d.mu.Lock()
	d.rendered = append(d.rendered, page)
	d.mu.Unlock()
	return &fakeRaster{page: page, size: domain.Size{Width: 612, Height: 792}}, nil
}

func (d *fakeDocument) ResolveNamed(_ context.Context, name string) (any, error) {
	if v, ok := d.named[name]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (d *fakeDocument) PageIndex(_ context.Context, ref any) (int, error) {
	if d.pageIndex == nil {
		return 0, domain.ErrNotFound
	}
	return d.pageIndex(ref)
}

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDocument) renderedPages() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	pages := append([]int{}, d.rendered...)
	sort.Ints(pages)
	return pages
}

// fakeRenderer implements driven.PageRenderer. When block is set,
// Load waits for a value on it before returning, which lets tests
// race a document swap against an in-flight load.
type fakeRenderer struct {
	mu    sync.Mutex
	docs  map[string]*fakeDocument
	err   error
	block chan struct{}
	loads []string
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{docs: make(map[string]*fakeDocument)}
}

func (r *fakeRenderer) Load(_ context.Context, source string) (driven.RenderedDocument, error) {
	r.mu.Lock()
	block := r.block
	r.loads = append(r.loads, source)
	r.mu.Unlock()
	if block != nil {
		<-block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	doc, ok := r.docs[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// --- Mock annotation store ---

// mockAnnotationStore implements driven.AnnotationStore in memory.
type mockAnnotationStore struct {
	mu          sync.Mutex
	annotations map[string]domain.Annotation
	createErr   error
}

func newMockAnnotationStore() *mockAnnotationStore {
	return &mockAnnotationStore{annotations: make(map[string]domain.Annotation)}
}

func (s *mockAnnotationStore) List(_ context.Context, paperID string) ([]domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Annotation
	for _, a := range s.annotations {
		if a.PaperID == paperID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *mockAnnotationStore) Get(_ context.Context, id string) (*domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.annotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *mockAnnotationStore) Create(_ context.Context, a *domain.Annotation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[a.ID] = *a
	return nil
}

func (s *mockAnnotationStore) Update(_ context.Context, a *domain.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.annotations[a.ID]; !ok {
		return domain.ErrNotFound
	}
	s.annotations[a.ID] = *a
	return nil
}

func (s *mockAnnotationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.annotations, id)
	return nil
}
