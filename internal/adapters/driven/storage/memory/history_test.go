package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

func TestHistoryStore_AppendAndList(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, domain.ChatExchange{
			ID:        fmt.Sprintf("ex-%d", i),
			Query:     fmt.Sprintf("question %d", i),
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "ex-0", all[0].ID)

	recent, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "ex-3", recent[0].ID)
	assert.Equal(t, "ex-4", recent[1].ID)

	more, err := store.List(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, more, 5)
}

func TestHistoryStore_Clear(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.ChatExchange{ID: "ex"}))

	require.NoError(t, store.Clear(ctx))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestHistoryStore_CopiesSources(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()
	sources := []domain.Source{{Filename: "a.md"}}
	require.NoError(t, store.Append(ctx, domain.ChatExchange{ID: "ex", Sources: sources}))

	sources[0].Filename = "changed.md"

	all, _ := store.List(ctx, 0)
	assert.Equal(t, "a.md", all[0].Sources[0].Filename)
}
