package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// DocumentService manages the lifecycle of ingested study documents.
type DocumentService interface {
	// Ingest chunks, embeds and indexes extracted text as one new document.
	// Nothing becomes visible unless every chunk was embedded.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// IngestFile extracts text from a raw file and ingests it.
	IngestFile(ctx context.Context, raw *domain.RawDocument, subject string) (*domain.IngestResult, error)

	// AddDocument indexes pre-chunked text as one new document.
	AddDocument(ctx context.Context, filename, subject string, chunks []string) (*domain.Document, error)

	// List returns every document ordered by upload time.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Chunks returns a document's chunks in order.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// Delete removes a document and all its chunks.
	Delete(ctx context.Context, id string) error

	// Stats reports index size.
	Stats(ctx context.Context) (domain.IndexStats, error)
}
