package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

func TestChatService_Ask_NoMaterials(t *testing.T) {
	llm := &mockLLM{responses: []string{"should not be used"}}
	history := memory.NewHistoryStore()
	svc := NewChatService(NewRetriever(memory.NewDocumentStore(), newKeywordEmbedder("x")), llm, history)

	answer, err := svc.Ask(context.Background(), "what is osmosis?", nil)
	require.NoError(t, err)
	assert.Equal(t, NoMaterialsAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, llm.prompts)

	exchanges, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "what is osmosis?", exchanges[0].Query)
}

func TestChatService_Ask_UsesLLM(t *testing.T) {
	embedder := newKeywordEmbedder("osmosis")
	store, _ := seedStore(t, embedder, "osmosis moves water across a membrane")
	llm := &mockLLM{responses: []string{"  Water moves across a membrane.  "}}
	svc := NewChatService(NewRetriever(store, embedder), llm, memory.NewHistoryStore())
	fixed := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	answer, err := svc.Ask(context.Background(), "explain osmosis", nil)
	require.NoError(t, err)
	assert.Equal(t, "Water moves across a membrane.", answer.Text)
	assert.Equal(t, fixed, answer.Timestamp)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc.txt", answer.Sources[0].Filename)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "[Source: doc.txt, Chunk 0]")
	assert.Contains(t, llm.prompts[0], "Question: explain osmosis")
}

func TestChatService_Ask_ContextChunks(t *testing.T) {
	embedder := newKeywordEmbedder("osmosis")
	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("osmosis note %d", i)
	}
	store, _ := seedStore(t, embedder, texts...)
	retriever := NewRetriever(store, embedder)

	tests := []struct {
		name string
		opts []ChatOption
		want int
	}{
		{"default", nil, AnswerContextChunks},
		{"configured", []ChatOption{WithContextChunks(2)}, 2},
		{"configured above default", []ChatOption{WithContextChunks(7)}, 7},
		{"non-positive keeps default", []ChatOption{WithContextChunks(0)}, AnswerContextChunks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChatService(retriever, nil, nil, tt.opts...)

			answer, err := svc.Ask(context.Background(), "osmosis", nil)

			require.NoError(t, err)
			assert.Len(t, answer.Sources, tt.want)
		})
	}
}

func TestChatService_Ask_CustomPrompt(t *testing.T) {
	embedder := newKeywordEmbedder("osmosis")
	store, _ := seedStore(t, embedder, "osmosis")
	llm := &mockLLM{responses: []string{"ok"}}
	svc := NewChatService(NewRetriever(store, embedder), llm, nil)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnswer: "CTX=%s Q=%s",
	}})

	_, err := svc.Ask(context.Background(), "osmosis?", nil)
	require.NoError(t, err)
	assert.Equal(t, "CTX=[Source: doc.txt, Chunk 0]\nosmosis Q=osmosis?", llm.prompts[0])
}

func TestChatService_Ask_WithoutLLMQuotesPassages(t *testing.T) {
	embedder := newKeywordEmbedder("osmosis")
	store, _ := seedStore(t, embedder, "osmosis moves water")
	svc := NewChatService(NewRetriever(store, embedder), nil, nil)

	answer, err := svc.Ask(context.Background(), "osmosis", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "osmosis moves water")
	assert.Contains(t, answer.Text, "[Source: doc.txt, Chunk 0]")
}

func TestChatService_Ask_Errors(t *testing.T) {
	embedder := newKeywordEmbedder("osmosis")
	store, _ := seedStore(t, embedder, "osmosis")

	svc := NewChatService(NewRetriever(store, embedder), &mockLLM{err: errors.New("timeout")}, nil)
	_, err := svc.Ask(context.Background(), "osmosis", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)

	_, err = svc.Ask(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestChatService_HistoryFailureDoesNotFailAsk(t *testing.T) {
	svc := NewChatService(NewRetriever(memory.NewDocumentStore(), newKeywordEmbedder("x")), nil, failingHistory{})
	answer, err := svc.Ask(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, NoMaterialsAnswer, answer.Text)
}

func TestChatService_HistoryLimitAndClear(t *testing.T) {
	svc := NewChatService(NewRetriever(memory.NewDocumentStore(), newKeywordEmbedder("x")), nil, memory.NewHistoryStore())
	ctx := context.Background()
	for _, q := range []string{"one", "two", "three"} {
		_, err := svc.Ask(ctx, q, nil)
		require.NoError(t, err)
	}

	recent, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Query)
	assert.Equal(t, "three", recent[1].Query)
	assert.NotEqual(t, recent[0].ID, recent[1].ID)

	require.NoError(t, svc.ClearHistory(ctx))
	all, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestChatService_NilHistory(t *testing.T) {
	svc := NewChatService(nil, nil, nil)
	exchanges, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, exchanges)
	assert.NoError(t, svc.ClearHistory(context.Background()))
}
