package driven

import (
	"context"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// HistoryStore records question/answer exchanges.
type HistoryStore interface {
	// Append records an exchange.
	Append(ctx context.Context, exchange domain.ChatExchange) error

	// List returns the most recent exchanges, oldest first.
	// A limit of zero or less returns everything.
	List(ctx context.Context, limit int) ([]domain.ChatExchange, error)

	// Clear removes every exchange.
	Clear(ctx context.Context) error
}
