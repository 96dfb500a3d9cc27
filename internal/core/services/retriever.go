package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever answers similarity queries against the document store.
type Retriever struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
}

// NewRetriever creates a new retriever.
func NewRetriever(store driven.DocumentStore, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns the topK chunks most similar to query, optionally scoped
// to docIDs. An empty index yields an empty slice.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, docIDs []string, topK int,
) ([]domain.QueryResult, error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q, topK: %d, scope: %d documents", query, topK, len(docIDs))

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if r.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, domain.ErrEmbeddingUnavailable)
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: query: %w", domain.ErrEmbeddingFailed, err)
	}

	results, err := r.store.Search(ctx, vec, docIDs, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, res := range results {
		if _, dup := seen[res.ChunkID]; dup {
			continue
		}
		seen[res.ChunkID] = struct{}{}
		out = append(out, res)
	}
	logger.Debug("Retrieved %d chunks", len(out))

	if out == nil {
		out = []domain.QueryResult{}
	}
	return out, nil
}
