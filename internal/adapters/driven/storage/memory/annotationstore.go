// Package memory provides in-memory implementations of driven port
// interfaces, used for tests and for viewing documents without a
// persistent annotation database.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// Ensure AnnotationStore implements the interface.
var _ driven.AnnotationStore = (*AnnotationStore)(nil)

// AnnotationStore is an in-memory implementation of driven.AnnotationStore.
type AnnotationStore struct {
	mu          sync.RWMutex
	annotations map[string]domain.Annotation
}

// NewAnnotationStore creates a new in-memory annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{
		annotations: make(map[string]domain.Annotation),
	}
}

// List returns all annotations for a paper.
func (s *AnnotationStore) List(_ context.Context, paperID string) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Annotation
	for id := range s.annotations {
		a := s.annotations[id]
		if a.PaperID == paperID {
			result = append(result, a)
		}
	}
	return result, nil
}

// Get retrieves an annotation by ID.
func (s *AnnotationStore) Get(_ context.Context, id string) (*domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.annotations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// Create stores a new annotation.
func (s *AnnotationStore) Create(_ context.Context, a *domain.Annotation) error {
	if a == nil || a.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[a.ID] = *a
	return nil
}

// Update replaces an existing annotation.
func (s *AnnotationStore) Update(_ context.Context, a *domain.Annotation) error {
	if a == nil || a.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.annotations[a.ID]; !ok {
		return domain.ErrNotFound
	}
	s.annotations[a.ID] = *a
	return nil
}

// Delete removes an annotation.
func (s *AnnotationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.annotations, id)
	return nil
}
