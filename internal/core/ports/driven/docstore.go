package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// DocumentStore owns document metadata and the vector index over their chunks.
// Both halves change together: a document and all of its chunks become visible
// in one step and disappear in one step.
type DocumentStore interface {
	// Commit inserts a fully built document with its embedded chunks.
	// Every chunk must belong to the document and carry an embedding whose
	// dimension matches the index.
	Commit(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// Delete removes a document and every chunk it owns.
	// Returns domain.ErrNotFound for an unknown id.
	Delete(ctx context.Context, id string) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Chunks returns the chunks of a document in index order.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// List returns every document ordered by upload time.
	List(ctx context.Context) ([]domain.Document, error)

	// Search ranks chunks by cosine similarity to the query vector.
	// An empty docIDs slice searches every document.
	Search(ctx context.Context, query []float32, docIDs []string, topK int) ([]domain.QueryResult, error)

	// Sample picks up to n chunks spread across documents for coverage.
	Sample(ctx context.Context, docIDs []string, n int) ([]domain.QueryResult, error)

	// Stats reports index size.
	Stats(ctx context.Context) (domain.IndexStats, error)
}
