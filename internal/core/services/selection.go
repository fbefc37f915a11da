package services

import (
	"strings"

	"github.com/custodia-labs/papyr/internal/core/domain"
)

// SelectionCapture converts a live text selection into a normalized
// highlight record and a page assignment.
type SelectionCapture struct {
	registry *GeometryRegistry
}

// NewSelectionCapture creates a capture bound to the given registry.
func NewSelectionCapture(registry *GeometryRegistry) *SelectionCapture {
	return &SelectionCapture{registry: registry}
}

// Capture determines the page owning the selection and records its
// bounds in normalized page coordinates, clipped to the page. Returns
// false for an empty selection, a selection outside any known page
// (margin text), or a page that is not renderable yet.
func (c *SelectionCapture) Capture(sel domain.Selection) (*domain.Annotation, bool) {
	if strings.TrimSpace(sel.Text) == "" {
		return nil, false
	}

	// Ascending page order, first match wins.
	for _, page := range c.registry.MountedPages() {
		surface, ok := c.registry.Surface(page)
		if !ok || !surface.ContainsAnchor(sel.Anchor) {
			continue
		}

		// Prefer the rendered content surface for geometry; fall back
		// to the page's outer box.
		box, ok := surface.ContentBounds()
		if !ok {
			box = surface.Bounds()
		}

		nb, ok := domain.NormalizeRect(sel.Bounds, box)
		if !ok {
			return nil, false
		}

		return &domain.Annotation{
			Kind: domain.KindHighlight,
			Page: page,
			Box:  &nb,
			Text: sel.Text,
		}, true
	}

	return nil, false
}
