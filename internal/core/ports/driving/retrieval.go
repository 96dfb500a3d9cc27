package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve embeds the query and returns at most topK ranked chunks.
	// An empty docIDs slice searches every document.
	Retrieve(ctx context.Context, query string, docIDs []string, topK int) ([]domain.QueryResult, error)
}
