// Package plaintext provides a text-file implementation of the page
// renderer port. It paginates a UTF-8 text or markdown file into
// fixed-height pages and derives an outline from markdown headings,
// which makes the full viewer pipeline usable without a binary
// document format.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

const (
	// linesPerPage is the page height in text lines.
	linesPerPage = 54

	// charWidth and lineHeight express the text grid in the same pixel
	// units the geometry registry works in.
	charWidth  = 7.2
	lineHeight = 14.0

	// minColumns keeps near-empty pages from degenerating to a sliver.
	minColumns = 80
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// Renderer loads text documents from the local filesystem.
type Renderer struct{}

// NewRenderer creates a plaintext renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Load reads and paginates the file at source.
func (r *Renderer) Load(_ context.Context, source string) (driven.RenderedDocument, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	doc := &document{}
	for start := 0; start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		doc.pages = append(doc.pages, newPage(lines[start:end]))
	}
	if len(doc.pages) == 0 {
		doc.pages = append(doc.pages, newPage(nil))
	}

	doc.outline, doc.named = buildOutline(lines)
	return doc, nil
}

// page is one paginated slice of the source text.
type page struct {
	text string
	size domain.Size
}

func newPage(lines []string) page {
	cols := minColumns
	for _, l := range lines {
		if n := len([]rune(l)); n > cols {
			cols = n
		}
	}
	return page{
		text: strings.Join(lines, "\n"),
		size: domain.Size{
			Width:  float64(cols) * charWidth,
			Height: linesPerPage * lineHeight,
		},
	}
}

// pageMarker is the opaque page reference used in outline
// destinations. PageIndex resolves it back to the page.
type pageMarker struct {
	index int // zero-based
}

// document implements driven.RenderedDocument over paginated text.
type document struct {
	pages   []page
	outline []domain.OutlineEntry
	named   map[string]any
}

// PageCount returns the number of pages.
func (d *document) PageCount() int {
	return len(d.pages)
}

// Outline returns the heading tree, or nil when the text has no
// markdown headings.
func (d *document) Outline(context.Context) ([]domain.OutlineEntry, error) {
	return d.outline, nil
}

// PageIntrinsicSize reports the text grid size of a page.
func (d *document) PageIntrinsicSize(_ context.Context, pageNum int) (domain.Size, error) {
	if pageNum < 1 || pageNum > len(d.pages) {
		return domain.Size{}, domain.ErrPageOutOfRange
	}
	return d.pages[pageNum-1].size, nil
}

// RenderPage returns the page's text raster.
func (d *document) RenderPage(_ context.Context, pageNum int) (driven.PageRaster, error) {
	if pageNum < 1 || pageNum > len(d.pages) {
		return nil, domain.ErrPageOutOfRange
	}
	p := d.pages[pageNum-1]
	return &raster{page: pageNum, size: p.size, text: p.text}, nil
}

// ResolveNamed looks up a heading anchor.
func (d *document) ResolveNamed(_ context.Context, name string) (any, error) {
	dest, ok := d.named[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return dest, nil
}

// PageIndex resolves a pageMarker to its zero-based index.
func (d *document) PageIndex(_ context.Context, ref any) (int, error) {
	m, ok := ref.(*pageMarker)
	if !ok {
		return 0, domain.ErrNotFound
	}
	if m.index < 0 || m.index >= len(d.pages) {
		return 0, domain.ErrNotFound
	}
	return m.index, nil
}

// Close releases nothing; the file content is held in memory.
func (d *document) Close() error {
	return nil
}

// raster implements driven.PageRaster.
type raster struct {
	page int
	size domain.Size
	text string
}

func (r *raster) Page() int         { return r.page }
func (r *raster) Size() domain.Size { return r.size }
func (r *raster) Text() string      { return r.text }

// buildOutline derives an outline tree from markdown ATX headings.
// Heading depth nests entries; every heading also gets a named anchor
// so destinations can be resolved by slug.
func buildOutline(lines []string) ([]domain.OutlineEntry, map[string]any) {
	named := make(map[string]any)

	type frame struct {
		level   int
		entries *[]domain.OutlineEntry
	}

	var root []domain.OutlineEntry
	stack := []frame{{level: 0, entries: &root}}

	for i, line := range lines {
		level, title := headingOf(line)
		if level == 0 {
			continue
		}

		dest := []any{&pageMarker{index: i / linesPerPage}}
		named[slugOf(title)] = dest
		entry := domain.OutlineEntry{Title: title, Destination: dest}

		// Pop to the nearest shallower heading.
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].entries
		*parent = append(*parent, entry)
		stack = append(stack, frame{level: level, entries: &(*parent)[len(*parent)-1].Children})
	}

	return root, named
}

// headingOf parses an ATX heading line. Returns level 0 for
// non-heading lines.
func headingOf(line string) (int, string) {
	trimmed := strings.TrimLeft(line, "#")
	level := len(line) - len(trimmed)
	if level == 0 || level > 6 || !strings.HasPrefix(trimmed, " ") {
		return 0, ""
	}
	title := strings.TrimSpace(trimmed)
	if title == "" {
		return 0, ""
	}
	return level, title
}

// slugOf builds the named-anchor key for a heading title.
func slugOf(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	return strings.Trim(s, "-")
}
