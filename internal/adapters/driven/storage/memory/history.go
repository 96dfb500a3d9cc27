package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu        sync.RWMutex
	exchanges []domain.ChatExchange
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append records an exchange.
func (s *HistoryStore) Append(_ context.Context, exchange domain.ChatExchange) error {
	exchange.Sources = slices.Clone(exchange.Sources)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, exchange)
	return nil
}

// List returns the most recent exchanges, oldest first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.ChatExchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.exchanges) {
		start = len(s.exchanges) - limit
	}
	return slices.Clone(s.exchanges[start:]), nil
}

// Clear removes every exchange.
func (s *HistoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = nil
	return nil
}
