package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// Ensure AnnotationManager implements the interface.
var _ driving.AnnotationService = (*AnnotationManager)(nil)

// AnnotationManager manages the stored annotations of a paper and
// their activation from the host.
type AnnotationManager struct {
	store  driven.AnnotationStore
	viewer *Viewer
}

// NewAnnotationManager creates a manager over the given store. The
// viewer is used for activation navigation and may be nil in
// headless contexts.
func NewAnnotationManager(store driven.AnnotationStore, viewer *Viewer) *AnnotationManager {
	return &AnnotationManager{store: store, viewer: viewer}
}

// List returns the annotations for a paper ordered by page, then
// vertical position.
func (m *AnnotationManager) List(ctx context.Context, paperID string) ([]domain.Annotation, error) {
	if m.store == nil {
		return nil, domain.ErrNotImplemented
	}
	annotations, err := m.store.List(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	sort.SliceStable(annotations, func(i, j int) bool {
		if annotations[i].Page != annotations[j].Page {
			return annotations[i].Page < annotations[j].Page
		}
		return annotationTop(annotations[i]) < annotationTop(annotations[j])
	})
	return annotations, nil
}

// UpdateComment replaces the comment of an annotation.
func (m *AnnotationManager) UpdateComment(ctx context.Context, id, comment string) error {
	if m.store == nil {
		return domain.ErrNotImplemented
	}
	a, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	a.Comment = comment
	if m.viewer != nil {
		a.UpdatedAt = m.viewer.clock.Now()
	}
	if err := m.store.Update(ctx, a); err != nil {
		return fmt.Errorf("updating annotation: %w", err)
	}
	return nil
}

// Delete removes an annotation.
func (m *AnnotationManager) Delete(ctx context.Context, id string) error {
	if m.store == nil {
		return domain.ErrNotImplemented
	}
	return m.store.Delete(ctx, id)
}

// Activate scrolls to the annotation's page and notifies the host.
func (m *AnnotationManager) Activate(ctx context.Context, id string) error {
	if m.store == nil {
		return domain.ErrNotImplemented
	}
	a, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.viewer != nil {
		m.viewer.ScrollToPage(a.Page)
		m.viewer.notifyActivated(*a)
	}
	return nil
}

// annotationTop returns the annotation's vertical position for
// ordering.
func annotationTop(a domain.Annotation) float64 {
	switch {
	case a.Box != nil:
		return a.Box.Top
	case a.Point != nil:
		return a.Point.Y
	default:
		return 0
	}
}
