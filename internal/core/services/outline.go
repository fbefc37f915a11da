package services

import (
	"context"
	"math"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// OutlineResolver walks a raw outline tree and resolves every entry
// to a validated 1-based page number. Resolution never fails: an
// unresolvable destination defaults to page 1, and one bad entry does
// not affect its siblings.
type OutlineResolver struct{}

// NewOutlineResolver creates a resolver.
func NewOutlineResolver() *OutlineResolver {
	return &OutlineResolver{}
}

// Resolve resolves a raw outline against the given document. A nil or
// empty input yields nil, which callers treat as "no outline
// available", as opposed to an outline whose entries defaulted.
func (r *OutlineResolver) Resolve(ctx context.Context, doc driven.RenderedDocument, entries []domain.OutlineEntry) []domain.ResolvedOutlineEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]domain.ResolvedOutlineEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.resolveEntry(ctx, doc, e))
	}
	return out
}

func (r *OutlineResolver) resolveEntry(ctx context.Context, doc driven.RenderedDocument, e domain.OutlineEntry) domain.ResolvedOutlineEntry {
	page, defaulted := r.resolveDestination(ctx, doc, e.Destination)
	return domain.ResolvedOutlineEntry{
		Title:     e.Title,
		Page:      page,
		Defaulted: defaulted,
		Children:  r.Resolve(ctx, doc, e.Children),
	}
}

// resolveDestination runs the fallback chain. The boolean result marks
// the DefaultedToPage1 terminal state.
func (r *OutlineResolver) resolveDestination(ctx context.Context, doc driven.RenderedDocument, dest any) (int, bool) {
	pageCount := doc.PageCount()
	if pageCount < 1 {
		return 1, true
	}
	if dest == nil {
		return 1, true
	}

	// Named destinations resolve to an explicit destination value; on
	// lookup failure the raw value falls through to the steps below.
	if name, ok := namedDestination(dest); ok {
		if resolved, err := doc.ResolveNamed(ctx, name); err == nil && resolved != nil {
			dest = resolved
		}
	}

	ref := pageReference(dest)

	// The renderer's index resolution is the primary strategy.
	if idx, err := doc.PageIndex(ctx, ref); err == nil {
		page := idx + 1
		if page >= 1 && page <= pageCount {
			return page, false
		}
		// Out of range resets to page 1 rather than propagating.
		return 1, true
	}

	// Fallback: a numeric field conventionally holding the page
	// number. Tried 1-based first, then 0-based; the encoding is
	// inherently ambiguous for values valid in both.
	if n, ok := numericField(ref, "num"); ok {
		if page, ok := disambiguatePage(n, pageCount); ok {
			return page, false
		}
	}

	// A bare number gets the same disambiguation.
	if n, ok := asPageNumber(ref); ok {
		if page, ok := disambiguatePage(n, pageCount); ok {
			return page, false
		}
	}

	return 1, true
}

// namedDestination recognises destinations that require a name lookup:
// a bare string, or an array whose first element is a string.
func namedDestination(dest any) (string, bool) {
	if s, ok := dest.(string); ok {
		return s, true
	}
	if arr, ok := dest.([]any); ok && len(arr) > 0 {
		if s, ok := arr[0].(string); ok {
			return s, true
		}
	}
	return "", false
}

// pageReference extracts the page reference from a destination value:
// the first element when array-shaped, the value itself when
// object-shaped or scalar.
func pageReference(dest any) any {
	if arr, ok := dest.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return dest
}

// disambiguatePage interprets n as 1-based when in [1, pageCount],
// else as 0-based when in [0, pageCount-1].
func disambiguatePage(n, pageCount int) (int, bool) {
	switch {
	case n >= 1 && n <= pageCount:
		return n, true
	case n >= 0 && n <= pageCount-1:
		return n + 1, true
	default:
		return 0, false
	}
}

func numericField(ref any, key string) (int, bool) {
	m, ok := ref.(map[string]any)
	if !ok {
		return 0, false
	}
	return asPageNumber(m[key])
}

func asPageNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
