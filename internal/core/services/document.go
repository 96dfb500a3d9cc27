package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
	"github.com/custodia-labs/preppal/internal/pool"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultEmbedBatchSize is how many chunks go to the embedding service per call.
const DefaultEmbedBatchSize = 16

// DocumentService ingests, lists and removes study documents.
// A document becomes visible only after every chunk has been embedded; the
// store commit is the single step that publishes it.
type DocumentService struct {
	store     driven.DocumentStore
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	registry  driven.NormaliserRegistry
	workers   *pool.Pool
	batchSize int
	now       func() time.Time
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithNormaliserRegistry enables IngestFile.
func WithNormaliserRegistry(registry driven.NormaliserRegistry) DocumentOption {
	return func(s *DocumentService) { s.registry = registry }
}

// WithWorkerPool embeds batches concurrently on p.
func WithWorkerPool(p *pool.Pool) DocumentOption {
	return func(s *DocumentService) { s.workers = p }
}

// WithEmbedBatchSize sets how many chunks are embedded per call.
func WithEmbedBatchSize(n int) DocumentOption {
	return func(s *DocumentService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the upload timestamp source.
func WithClock(now func() time.Time) DocumentOption {
	return func(s *DocumentService) { s.now = now }
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	store driven.DocumentStore,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	opts ...DocumentOption,
) *DocumentService {
	s := &DocumentService{
		store:     store,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest chunks, embeds and indexes extracted text as one new document.
func (s *DocumentService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	logger.Debug("File: %q, subject: %q, %d chars", req.Filename, req.Subject, len(req.Text))

	if strings.TrimSpace(req.Filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidArgument)
	}

	chunks, err := s.chunker.Split(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", req.Filename, err)
	}
	logger.Debug("Chunker produced %d chunks", len(chunks))

	doc, err := s.AddDocument(ctx, req.Filename, req.Subject, chunks)
	if err != nil {
		return nil, err
	}

	return &domain.IngestResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: doc.ChunkCount(),
	}, nil
}

// IngestFile extracts text from a raw file and ingests it under its filename.
func (s *DocumentService) IngestFile(
	ctx context.Context, raw *domain.RawDocument, subject string,
) (*domain.IngestResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no file", domain.ErrInvalidArgument)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("%w: no text extractors configured", domain.ErrUnsupportedType)
	}

	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", raw.Filename(), err)
	}

	return s.Ingest(ctx, domain.IngestRequest{
		Filename: raw.Filename(),
		Subject:  subject,
		Text:     result.Text,
	})
}

// AddDocument indexes pre-chunked text as one new document.
// If any chunk fails to embed nothing is stored.
func (s *DocumentService) AddDocument(
	ctx context.Context, filename, subject string, chunks []string,
) (*domain.Document, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s has no text to index", domain.ErrNoContent, filename)
	}

	start := time.Now()
	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}
	logger.Since("Embedding", start)

	doc := domain.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		Subject:    strings.TrimSpace(subject),
		UploadedAt: s.now(),
		ChunkIDs:   make([]string, len(chunks)),
	}
	records := make([]domain.Chunk, len(chunks))
	for i, text := range chunks {
		id := uuid.New().String()
		doc.ChunkIDs[i] = id
		records[i] = domain.Chunk{
			ID:         id,
			DocumentID: doc.ID,
			Index:      i,
			Text:       text,
			Embedding:  vectors[i],
		}
	}

	if err := s.store.Commit(ctx, doc, records); err != nil {
		return nil, fmt.Errorf("commit %s: %w", filename, err)
	}
	logger.Info("Indexed %s as %s (%d chunks)", filename, doc.ID, len(chunks))

	return &doc, nil
}

// embed returns one vector per chunk, batching calls and running batches on
// the worker pool when one is configured.
func (s *DocumentService) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, domain.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(chunks))
	batches := (len(chunks) + s.batchSize - 1) / s.batchSize

	task := func(ctx context.Context, b int) error {
		lo := b * s.batchSize
		hi := min(lo+s.batchSize, len(chunks))
		out, err := s.embedder.EmbedBatch(ctx, chunks[lo:hi])
		if err != nil {
			return fmt.Errorf("chunks %d-%d: %w", lo, hi-1, err)
		}
		if len(out) != hi-lo {
			return fmt.Errorf("chunks %d-%d: got %d embeddings", lo, hi-1, len(out))
		}
		copy(vectors[lo:hi], out)
		return nil
	}

	var err error
	if s.workers != nil {
		err = s.workers.Run(ctx, batches, task)
	} else {
		for b := 0; b < batches && err == nil; b++ {
			err = task(ctx, b)
		}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		logger.Warn("Embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

// List returns every document ordered by upload time.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.List(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.Get(ctx, id)
}

// Chunks returns a document's chunks in order.
func (s *DocumentService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	return s.store.Chunks(ctx, id)
}

// Delete removes a document and all its chunks.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// Stats reports index size.
func (s *DocumentService) Stats(ctx context.Context) (domain.IndexStats, error) {
	return s.store.Stats(ctx)
}
