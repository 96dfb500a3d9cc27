package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Retrieval == nil {
		ports.Retrieval = &mockRetrievalService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieval results", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			results: []domain.QueryResult{{
				ChunkID:    "c1",
				DocumentID: "doc-1",
				Filename:   "cells.md",
				ChunkIndex: 2,
				Score:      0.95,
				Text:       "Mitochondria produce ATP.",
			}},
		}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "atp", TopK: 3, DocumentIDs: []string{"doc-1"}})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, SearchResultOutput{
			DocumentID: "doc-1",
			Filename:   "cells.md",
			ChunkIndex: 2,
			Score:      0.95,
			Text:       "Mitochondria produce ATP.",
		}, output.Results[0])
		assert.Equal(t, 3, retrieval.gotTopK)
		assert.Equal(t, []string{"doc-1"}, retrieval.gotDocIDs)
	})

	t.Run("default top k", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "atp"})

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultTopK, retrieval.gotTopK)
		assert.NotNil(t, output.Results)
		assert.Zero(t, output.Count)
	})

	t.Run("configured top k", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{Retrieval: retrieval, TopK: 9})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "atp"})
		require.NoError(t, err)
		assert.Equal(t, 9, retrieval.gotTopK)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "atp", TopK: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, retrieval.gotTopK)
	})

	t.Run("negative top k reaches the retriever", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: domain.ErrInvalidArgument}
		server := newTestServer(t, &Ports{Retrieval: retrieval, TopK: 9})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "atp", TopK: -1})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, -1, retrieval.gotTopK)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{err: domain.ErrInvalidArgument}})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		chat := &mockChatService{answer: &domain.Answer{
			Text:    "ATP is made in mitochondria.",
			Sources: []domain.Source{{Filename: "cells.md", ChunkIndex: 0, Score: 0.9}},
		}}
		server := newTestServer(t, &Ports{Chat: chat})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "where is ATP made?"})

		require.NoError(t, err)
		assert.Equal(t, "ATP is made in mitochondria.", output.Answer)
		assert.Equal(t, []SourceOutput{{Filename: "cells.md", ChunkIndex: 0, Score: 0.9}}, output.Sources)
	})

	t.Run("no sources is an empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Chat: &mockChatService{answer: &domain.Answer{Text: "none"}}})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.NotNil(t, output.Sources)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Chat: &mockChatService{err: errors.New("llm down")}})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.EqualError(t, err, "llm down")
	})
}

func TestServer_DocumentTools(t *testing.T) {
	ctx := context.Background()
	uploaded := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("list documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "doc-1", Filename: "cells.md", Subject: "Biology", UploadedAt: uploaded, ChunkIDs: []string{"a", "b"}},
			{ID: "doc-2", Filename: "notes.txt", UploadedAt: uploaded},
		}}
		server := newTestServer(t, &Ports{Document: docs})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, DocumentOutput{
			ID:         "doc-1",
			Filename:   "cells.md",
			Subject:    "Biology",
			UploadedAt: "2026-05-01T12:00:00Z",
			Chunks:     2,
		}, output.Documents[0])
		assert.Equal(t, domain.DefaultSubject, output.Documents[1].Subject)
	})

	t.Run("ingest text", func(t *testing.T) {
		docs := &mockDocumentService{result: &domain.IngestResult{DocumentID: "doc-9", Filename: "osmosis.txt", ChunkCount: 3}}
		server := newTestServer(t, &Ports{Document: docs})

		_, output, err := server.handleIngestText(ctx, nil, IngestTextInput{Filename: "osmosis.txt", Subject: "Biology", Text: "Water moves."})

		require.NoError(t, err)
		assert.Equal(t, IngestTextOutput{DocumentID: "doc-9", Filename: "osmosis.txt", Chunks: 3}, output)
		require.Len(t, docs.ingested, 1)
		assert.Equal(t, domain.IngestRequest{Filename: "osmosis.txt", Subject: "Biology", Text: "Water moves."}, docs.ingested[0])
	})

	t.Run("delete document", func(t *testing.T) {
		docs := &mockDocumentService{}
		server := newTestServer(t, &Ports{Document: docs})

		_, output, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.Deleted)
		assert.Equal(t, []string{"doc-1"}, docs.deleted)
	})

	t.Run("delete unknown document", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: domain.ErrNotFound}})

		_, _, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{DocumentID: "nope"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleQuiz(t *testing.T) {
	ctx := context.Background()
	item := domain.QuizItem{
		Question:     "What produces ATP?",
		Options:      []string{"Mitochondria", "Ribosome", "Nucleus", "Golgi"},
		CorrectIndex: 0,
		Explanation:  "Mitochondria produce ATP.",
	}

	t.Run("default question count", func(t *testing.T) {
		quiz := &mockQuizService{items: []domain.QuizItem{item}}
		server := newTestServer(t, &Ports{Quiz: quiz})

		_, output, err := server.handleQuiz(ctx, nil, QuizInput{Topic: "cells"})

		require.NoError(t, err)
		assert.Equal(t, []domain.QuizItem{item}, output.Questions)
		assert.Equal(t, domain.QuizRequest{Topic: "cells", NumQuestions: defaultQuizQuestions}, quiz.req)
	})

	t.Run("passes explicit count through", func(t *testing.T) {
		quiz := &mockQuizService{err: domain.ErrInvalidArgument}
		server := newTestServer(t, &Ports{Quiz: quiz})

		_, _, err := server.handleQuiz(ctx, nil, QuizInput{NumQuestions: 11})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, 11, quiz.req.NumQuestions)
	})
}

func TestServer_PlanTools(t *testing.T) {
	ctx := context.Background()

	t.Run("build plan", func(t *testing.T) {
		planner := &mockPlannerService{plan: samplePlan()}
		server := newTestServer(t, &Ports{Planner: planner})

		_, output, err := server.handleBuildPlan(ctx, nil, PlanInput{
			ExamDate:    "2026-06-12",
			HoursPerDay: 2,
			Subjects:    []string{"Math", "Physics"},
		})

		require.NoError(t, err)
		assert.False(t, planner.saved)
		assert.Equal(t, time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC), planner.req.ExamDate)
		assert.Equal(t, 2, output.TotalDays)
		require.Len(t, output.Days, 2)
		assert.Equal(t, "2026-06-11", output.Days[0].Date)
		assert.NotNil(t, output.Days[1].Topics)
		assert.Empty(t, output.ID)
	})

	t.Run("build and save plan", func(t *testing.T) {
		planner := &mockPlannerService{plan: samplePlan()}
		server := newTestServer(t, &Ports{Planner: planner})

		_, output, err := server.handleBuildPlan(ctx, nil, PlanInput{
			ExamDate:    "2026-06-12",
			HoursPerDay: 2,
			Subjects:    []string{"Math"},
			Save:        true,
		})

		require.NoError(t, err)
		assert.True(t, planner.saved)
		assert.Equal(t, "plan-1", output.ID)
	})

	t.Run("rejects malformed exam date", func(t *testing.T) {
		server := newTestServer(t, &Ports{Planner: &mockPlannerService{}})

		_, _, err := server.handleBuildPlan(ctx, nil, PlanInput{ExamDate: "12/06/2026"})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("complete day", func(t *testing.T) {
		planner := &mockPlannerService{plan: samplePlan()}
		server := newTestServer(t, &Ports{Planner: planner})

		_, output, err := server.handleCompleteDay(ctx, nil, CompleteDayInput{Day: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, planner.completed)
		assert.True(t, output.Days[0].Completed)
		assert.InDelta(t, 0.5, output.Progress, 1e-9)
	})
}
