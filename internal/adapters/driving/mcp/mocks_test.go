package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/preppal/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error

	gotTopK   int
	gotDocIDs []string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, docIDs []string, topK int) ([]domain.QueryResult, error) {
	m.gotTopK = topK
	m.gotDocIDs = docIDs
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	chunks    []domain.Chunk
	result    *domain.IngestResult
	err       error

	ingested []domain.IngestRequest
	deleted  []string
}

func (m *mockDocumentService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.ingested = append(m.ingested, req)
	return m.result, m.err
}

func (m *mockDocumentService) IngestFile(context.Context, *domain.RawDocument, string) (*domain.IngestResult, error) {
	return m.result, m.err
}

func (m *mockDocumentService) AddDocument(context.Context, string, string, []string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(context.Context, string) (*domain.Document, error) {
	if len(m.documents) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.documents[0], m.err
}

func (m *mockDocumentService) Chunks(context.Context, string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockDocumentService) Stats(context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Documents: len(m.documents)}, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.Answer
	err    error
}

func (m *mockChatService) Ask(context.Context, string, []string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockChatService) History(context.Context, int) ([]domain.ChatExchange, error) {
	return nil, m.err
}

func (m *mockChatService) ClearHistory(context.Context) error {
	return m.err
}

// mockQuizService is a mock implementation of driving.QuizService.
type mockQuizService struct {
	items []domain.QuizItem
	err   error
	req   domain.QuizRequest
}

func (m *mockQuizService) Generate(_ context.Context, req domain.QuizRequest) ([]domain.QuizItem, error) {
	m.req = req
	return m.items, m.err
}

// mockPlannerService is a mock implementation of driving.PlannerService.
type mockPlannerService struct {
	plan *domain.StudyPlan
	err  error

	req       domain.PlanRequest
	saved     bool
	completed int
}

func (m *mockPlannerService) Build(_ context.Context, req domain.PlanRequest) (*domain.StudyPlan, error) {
	m.req = req
	return m.plan, m.err
}

func (m *mockPlannerService) Save(_ context.Context, plan *domain.StudyPlan) error {
	m.saved = true
	plan.ID = "plan-1"
	return m.err
}

func (m *mockPlannerService) Get(context.Context, string) (*domain.StudyPlan, error) {
	return m.plan, m.err
}

func (m *mockPlannerService) Complete(_ context.Context, _ string, day int) (*domain.StudyPlan, error) {
	m.completed = day
	if m.err != nil {
		return nil, m.err
	}
	_ = m.plan.MarkCompleted(day)
	return m.plan, nil
}

func samplePlan() *domain.StudyPlan {
	day := func(d int) time.Time { return time.Date(2026, 6, 10+d, 0, 0, 0, 0, time.UTC) }
	return &domain.StudyPlan{
		Entries: []domain.StudyPlanEntry{
			{Day: 1, Date: day(1), Subject: "Math", Hours: 2, Topics: []string{"Math - Topic 1"}},
			{Day: 2, Date: day(2), Subject: "Physics", Hours: 2},
		},
		TotalDays:  2,
		TotalHours: 4,
	}
}
