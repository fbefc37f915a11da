// Package reader provides the scrollable page reader view. The view is
// the viewer core's host: it acts as the scrollable viewport, mounts a
// render surface per page, and translates terminal rows into the pixel
// units the core works in (one row = one pixel vertically, one cell =
// one pixel horizontally).
package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// placeholderRows is the height of a page whose raster has not arrived
// yet. Layout re-flows as rasters land.
const placeholderRows = 1

// lineAnchor is the opaque selection anchor for a document row. The
// core only ever hands it back to the owning page's surface.
type lineAnchor struct {
	page int
	row  int
}

// View is the scrollable page reader.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	viewer driving.ViewerService

	width  int
	height int

	pageCount   int
	title       string
	rasterLines map[int][]string
	surfaces    []*pageSurface

	scrollTop float64

	highlightMode bool
	cursorRow     int
	selectStart   int

	annotations []domain.Annotation

	loading bool
	err     error
}

// View doubles as the core's scrollable viewport.
var _ driven.Viewport = (*View)(nil)

// NewView creates a new reader view.
func NewView(viewer driving.ViewerService, s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:      s,
		keymap:      km,
		viewer:      viewer,
		width:       80,
		height:      24,
		rasterLines: make(map[int][]string),
		selectStart: -1,
		loading:     true,
	}
}

// Init initialises the reader view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument installs a freshly loaded document: page surfaces are
// mounted, reader state resets, and the first screenful of pages is
// requested.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	for _, s := range v.surfaces {
		v.viewer.DetachPageSurface(s.page)
	}

	v.pageCount = doc.PageCount
	v.title = filepath.Base(doc.Source)
	v.rasterLines = make(map[int][]string)
	v.surfaces = make([]*pageSurface, 0, doc.PageCount)
	v.scrollTop = 0
	v.cursorRow = 0
	v.selectStart = -1
	v.highlightMode = false
	v.annotations = nil
	v.loading = false
	v.err = nil

	for page := 1; page <= doc.PageCount; page++ {
		s := &pageSurface{page: page, view: v}
		v.surfaces = append(v.surfaces, s)
		v.viewer.AttachPageSurface(s)
	}

	return v.requestVisible()
}

// SetLoadError surfaces a document-level load failure. The reader
// stays interactive over the previous (or empty) content.
func (v *View) SetLoadError(err error) {
	v.loading = false
	v.err = err
}

// SetLoading marks the reader as waiting for a document.
func (v *View) SetLoading() {
	v.loading = true
	v.err = nil
}

// SetAnnotations installs the highlight overlays to paint.
func (v *View) SetAnnotations(annotations []domain.Annotation) {
	v.annotations = annotations
}

// PageRendered ingests a freshly rendered page raster.
func (v *View) PageRendered(page int) {
	raster, ok := v.viewer.Raster(page)
	if !ok {
		return
	}
	text := strings.TrimSuffix(raster.Text(), "\n")
	if text == "" {
		v.rasterLines[page] = []string{""}
		return
	}
	v.rasterLines[page] = strings.Split(text, "\n")
}

// SetHighlightMode toggles the visual selection cursor.
func (v *View) SetHighlightMode(on bool) {
	v.highlightMode = on
	v.selectStart = -1
	if on {
		v.cursorRow = v.clampRow(int(v.scrollTop))
	}
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Size is the viewport's current size.
func (v *View) Size() domain.Size {
	return domain.Size{Width: float64(v.width), Height: float64(v.height)}
}

// ScrollTop is the current vertical scroll offset in rows.
func (v *View) ScrollTop() float64 {
	return v.scrollTop
}

// ScrollTo scrolls to the given row offset. Terminal scrolling is
// always instant; smooth is accepted and ignored.
func (v *View) ScrollTo(top float64, smooth bool) {
	_ = smooth
	v.scrollTop = v.clampScroll(top)
}

// Update handles reader messages.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return v.handleKeyMsg(keyMsg)
	}
	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.highlightMode {
			v.moveCursor(-1)
			return v, nil
		}
		return v, v.scrollBy(-1)

	case keymap.Matches(keyStr, v.keymap.Down):
		if v.highlightMode {
			v.moveCursor(1)
			return v, nil
		}
		return v, v.scrollBy(1)

	case keymap.Matches(keyStr, v.keymap.PageUp):
		return v, v.scrollBy(-v.height / 2)

	case keymap.Matches(keyStr, v.keymap.PageDown):
		return v, v.scrollBy(v.height / 2)

	case keymap.Matches(keyStr, v.keymap.NextPage):
		v.viewer.ScrollToPage(v.viewer.State().CurrentPage + 1)
		return v, v.requestVisible()

	case keymap.Matches(keyStr, v.keymap.PrevPage):
		v.viewer.ScrollToPage(v.viewer.State().CurrentPage - 1)
		return v, v.requestVisible()

	case keymap.Matches(keyStr, v.keymap.Select):
		if !v.highlightMode {
			return v, nil
		}
		if v.selectStart < 0 {
			v.selectStart = v.cursorRow
			return v, nil
		}
		return v, v.captureSelection()

	case keymap.Matches(keyStr, v.keymap.Back):
		if v.selectStart >= 0 {
			v.selectStart = -1
			return v, nil
		}
		if v.highlightMode {
			v.viewer.SetHighlightMode(false)
			v.SetHighlightMode(false)
			return v, nil
		}
	}

	return v, nil
}

// scrollBy moves the scroll offset and reports the move to the core's
// reactive page tracking.
func (v *View) scrollBy(rows int) tea.Cmd {
	v.scrollTop = v.clampScroll(v.scrollTop + float64(rows))
	v.viewer.HandleScroll()
	return v.requestVisible()
}

// moveCursor moves the highlight cursor, scrolling to keep it visible.
func (v *View) moveCursor(delta int) {
	v.cursorRow = v.clampRow(v.cursorRow + delta)
	if float64(v.cursorRow) < v.scrollTop {
		v.scrollTop = float64(v.cursorRow)
		v.viewer.HandleScroll()
	}
	if float64(v.cursorRow) >= v.scrollTop+float64(v.height) {
		v.scrollTop = float64(v.cursorRow-v.height) + 1
		v.viewer.HandleScroll()
	}
}

// captureSelection turns the visual row range into a selection and
// hands it to the core for capture.
func (v *View) captureSelection() tea.Cmd {
	startRow, endRow := v.selectStart, v.cursorRow
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	v.selectStart = -1

	page, ok := v.rowToPage(startRow)
	if !ok {
		return nil
	}

	sel := domain.Selection{
		Text: v.selectedText(page, startRow, endRow),
		Bounds: domain.PixelRect{
			Left:   0,
			Top:    float64(startRow) - v.scrollTop,
			Right:  float64(v.width),
			Bottom: float64(endRow+1) - v.scrollTop,
		},
		Anchor: lineAnchor{page: page, row: startRow},
	}

	viewer := v.viewer
	return func() tea.Msg {
		ann, err := viewer.CaptureSelection(context.Background(), sel)
		if err != nil {
			return messages.AnnotationCaptured{Err: err}
		}
		if ann == nil {
			return nil
		}
		return messages.AnnotationCaptured{Annotation: *ann}
	}
}

// selectedText joins the selected rows that belong to the owning page.
func (v *View) selectedText(page, startRow, endRow int) string {
	lines, ok := v.rasterLines[page]
	if !ok {
		return ""
	}
	top := v.pageTop(page)
	var out []string
	for row := startRow; row <= endRow; row++ {
		idx := row - top
		if idx >= 0 && idx < len(lines) {
			out = append(out, lines[idx])
		}
	}
	return strings.Join(out, "\n")
}

// requestVisible schedules rendering for the pages intersecting the
// viewport.
func (v *View) requestVisible() tea.Cmd {
	pages := v.visiblePages()
	if len(pages) == 0 {
		return nil
	}
	viewer := v.viewer
	return func() tea.Msg {
		viewer.RequestPages(context.Background(), pages...)
		return nil
	}
}

// visiblePages returns the pages intersecting the current viewport,
// plus one page of lookahead either side.
func (v *View) visiblePages() []int {
	if v.pageCount == 0 {
		return nil
	}
	top := int(v.scrollTop)
	bottom := top + v.height

	var pages []int
	for page := 1; page <= v.pageCount; page++ {
		pt := v.pageTop(page)
		pb := pt + v.pageRowsFor(page)
		if pb >= top && pt <= bottom {
			pages = append(pages, page)
		}
	}
	if len(pages) > 0 {
		if first := pages[0] - 1; first >= 1 {
			pages = append([]int{first}, pages...)
		}
		if last := pages[len(pages)-1] + 1; last <= v.pageCount {
			pages = append(pages, last)
		}
	}
	return pages
}

// pageRowsFor returns the page's height in rows, a placeholder until
// its raster arrives.
func (v *View) pageRowsFor(page int) int {
	if lines, ok := v.rasterLines[page]; ok {
		return len(lines)
	}
	return placeholderRows
}

// pageTop returns the page's first row in the document stack. Each
// page is followed by a one-row separator.
func (v *View) pageTop(page int) int {
	top := 0
	for p := 1; p < page; p++ {
		top += v.pageRowsFor(p) + 1
	}
	return top
}

// totalRows is the height of the full page stack.
func (v *View) totalRows() int {
	if v.pageCount == 0 {
		return 0
	}
	return v.pageTop(v.pageCount) + v.pageRowsFor(v.pageCount)
}

// rowToPage maps an absolute row to the page containing it. Separator
// rows belong to no page.
func (v *View) rowToPage(row int) (int, bool) {
	for page := 1; page <= v.pageCount; page++ {
		top := v.pageTop(page)
		if row >= top && row < top+v.pageRowsFor(page) {
			return page, true
		}
	}
	return 0, false
}

func (v *View) clampScroll(top float64) float64 {
	max := float64(v.totalRows() - v.height)
	if top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	return top
}

func (v *View) clampRow(row int) int {
	if last := v.totalRows() - 1; row > last {
		row = last
	}
	if row < 0 {
		row = 0
	}
	return row
}

// View renders the visible slice of the page stack.
func (v *View) View() string {
	if v.err != nil {
		return v.styles.Error.Render(fmt.Sprintf("Failed to load document: %v", v.err))
	}
	if v.loading {
		return v.styles.Muted.Render("Loading document...")
	}
	if v.pageCount == 0 {
		return v.styles.Muted.Render("No document loaded.")
	}

	top := int(v.scrollTop)
	rendered := make([]string, 0, v.height)
	for row := top; row < top+v.height; row++ {
		if row >= v.totalRows() {
			break
		}
		rendered = append(rendered, v.renderRow(row))
	}
	return strings.Join(rendered, "\n")
}

// renderRow renders a single absolute row with its overlays.
func (v *View) renderRow(row int) string {
	page, ok := v.rowToPage(row)
	if !ok {
		return v.renderSeparator(row)
	}

	lines, have := v.rasterLines[page]
	line := fmt.Sprintf("rendering page %d...", page)
	style := v.styles.Muted
	if have {
		line = lines[row-v.pageTop(page)]
		style = v.styles.Normal
	}

	switch {
	case v.highlightMode && row == v.cursorRow:
		style = v.styles.Selected
	case v.highlightMode && v.selectStart >= 0 && v.betweenSelection(row):
		style = v.styles.Highlight
	case v.rowAnnotated(page, row):
		style = v.styles.Highlight
	}

	return style.Render(line)
}

// renderSeparator renders the break line between two pages.
func (v *View) renderSeparator(row int) string {
	page, _ := v.rowToPage(row - 1)
	label := fmt.Sprintf("── end of page %d ", page)
	if pad := v.width - len([]rune(label)); pad > 0 {
		label += strings.Repeat("─", pad)
	}
	return v.styles.PageBreak.Render(label)
}

// betweenSelection reports whether a row is inside the in-progress
// visual selection.
func (v *View) betweenSelection(row int) bool {
	lo, hi := v.selectStart, v.cursorRow
	if lo > hi {
		lo, hi = hi, lo
	}
	return row >= lo && row <= hi
}

// rowAnnotated reports whether a stored highlight covers the row.
func (v *View) rowAnnotated(page, row int) bool {
	rows := v.pageRowsFor(page)
	if rows == 0 {
		return false
	}
	rel := float64(row-v.pageTop(page)) / float64(rows)
	for _, a := range v.annotations {
		if a.Kind != domain.KindHighlight || a.Page != page || a.Box == nil {
			continue
		}
		if rel >= a.Box.Top && rel < a.Box.Bottom {
			return true
		}
	}
	return false
}

// HighlightMode reports whether the visual selection cursor is active.
func (v *View) HighlightMode() bool {
	return v.highlightMode
}

// SelectionPending reports whether a selection start has been marked.
func (v *View) SelectionPending() bool {
	return v.selectStart >= 0
}

// AnchorFor returns the viewport pixel anchor for an annotation,
// suitable for floating panel placement.
func (v *View) AnchorFor(a domain.Annotation) domain.PixelPoint {
	top := float64(v.pageTop(a.Page)) - v.scrollTop
	rows := float64(v.pageRowsFor(a.Page))
	switch {
	case a.Box != nil:
		return domain.PixelPoint{X: a.Box.Left * float64(v.width), Y: top + a.Box.Bottom*rows}
	case a.Point != nil:
		return domain.PixelPoint{X: a.Point.X * float64(v.width), Y: top + a.Point.Y*rows}
	default:
		return domain.PixelPoint{X: float64(v.width) / 2, Y: top}
	}
}

// Title returns the loaded document's title.
func (v *View) Title() string {
	return v.title
}

// pageSurface is the render target handle for one mounted page.
type pageSurface struct {
	page int
	view *View
}

var _ driven.PageSurface = (*pageSurface)(nil)

// Page is the 1-based page number.
func (s *pageSurface) Page() int {
	return s.page
}

// Bounds is the page's outer box relative to the viewport origin.
func (s *pageSurface) Bounds() domain.PageBox {
	return domain.PageBox{
		Left:   0,
		Top:    float64(s.view.pageTop(s.page)) - s.view.scrollTop,
		Width:  float64(s.view.width),
		Height: float64(s.view.pageRowsFor(s.page)),
	}
}

// ContentBounds is the rendered content box, unavailable until the
// page's raster has arrived.
func (s *pageSurface) ContentBounds() (domain.PageBox, bool) {
	if _, ok := s.view.rasterLines[s.page]; !ok {
		return domain.PageBox{}, false
	}
	return s.Bounds(), true
}

// ContainsAnchor reports whether the selection anchor belongs to this
// page.
func (s *pageSurface) ContainsAnchor(anchor any) bool {
	a, ok := anchor.(lineAnchor)
	return ok && a.page == s.page
}
