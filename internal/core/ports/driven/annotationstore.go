package driven

import (
	"context"

	"github.com/custodia-labs/papyr/internal/core/domain"
)

// AnnotationStore persists annotations keyed by paper and page with
// normalized coordinates. The viewer only projects and displays the
// records; the storage format is the adapter's concern.
type AnnotationStore interface {
	// List returns all annotations for a paper.
	List(ctx context.Context, paperID string) ([]domain.Annotation, error)

	// Get retrieves an annotation by ID.
	Get(ctx context.Context, id string) (*domain.Annotation, error)

	// Create stores a new annotation.
	Create(ctx context.Context, a *domain.Annotation) error

	// Update replaces an existing annotation.
	Update(ctx context.Context, a *domain.Annotation) error

	// Delete removes an annotation.
	Delete(ctx context.Context, id string) error
}
