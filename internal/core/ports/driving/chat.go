package driving

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// ChatService answers study questions from indexed material.
type ChatService interface {
	// Ask retrieves context for the question and synthesises an answer.
	Ask(ctx context.Context, question string, docIDs []string) (*domain.Answer, error)

	// History returns the most recent exchanges, oldest first.
	History(ctx context.Context, limit int) ([]domain.ChatExchange, error)

	// ClearHistory forgets every recorded exchange.
	ClearHistory(ctx context.Context) error
}
