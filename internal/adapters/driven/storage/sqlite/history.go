package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append records an exchange.
func (s *historyStore) Append(ctx context.Context, exchange domain.ChatExchange) error {
	sources := exchange.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO chat_history (id, query, answer, sources, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, exchange.ID, exchange.Query, exchange.Answer, string(sourcesJSON), formatTime(exchange.Timestamp))
	if err != nil {
		return fmt.Errorf("saving exchange: %w", err)
	}
	return nil
}

// List returns the most recent exchanges, oldest first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.ChatExchange, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative limit as no limit.
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, query, answer, sources, created_at FROM (
			SELECT seq, id, query, answer, sources, created_at
			FROM chat_history ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	exchanges := []domain.ChatExchange{}
	for rows.Next() {
		var (
			ex          domain.ChatExchange
			sourcesJSON string
			createdAt   string
		)
		if err := rows.Scan(&ex.ID, &ex.Query, &ex.Answer, &sourcesJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &ex.Sources); err != nil {
			return nil, fmt.Errorf("unmarshalling sources: %w", err)
		}
		ex.Timestamp = parseTime(createdAt)
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// Clear removes every exchange.
func (s *historyStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_history"); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
