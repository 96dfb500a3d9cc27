package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
)

var errMock = errors.New("mock failure")

var testTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	docs     []domain.Document
	err      error
	ingested []string
	subject  string
	deleted  []string
}

func (m *mockDocumentService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, req.Filename)
	return &domain.IngestResult{DocumentID: "doc-new", Filename: req.Filename, ChunkCount: 1}, nil
}

func (m *mockDocumentService) IngestFile(_ context.Context, raw *domain.RawDocument, subject string) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, raw.URI)
	m.subject = subject
	return &domain.IngestResult{DocumentID: "doc-new", Filename: raw.URI, ChunkCount: 3}, nil
}

func (m *mockDocumentService) AddDocument(_ context.Context, filename, subject string, chunks []string) (*domain.Document, error) {
	return &domain.Document{ID: "doc-new", Filename: filename, Subject: subject}, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, id string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Chunk{
		{ID: "c-0", DocumentID: id, Index: 0, Text: "Cells are the basic unit of life."},
		{ID: "c-1", DocumentID: id, Index: 1, Text: "Mitochondria produce ATP."},
	}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.IndexStats, error) {
	return domain.IndexStats{Documents: len(m.docs), Chunks: 5, Dimensions: 256}, m.err
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error
	query   string
	docIDs  []string
	topK    int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, docIDs []string, topK int) ([]domain.QueryResult, error) {
	m.query = query
	m.docIDs = docIDs
	m.topK = topK
	return m.results, m.err
}

// mockChatService implements driving.ChatService.
type mockChatService struct {
	history []domain.ChatExchange
	err     error
	cleared bool
	limit   int
}

func (m *mockChatService) Ask(_ context.Context, question string, _ []string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Query:     question,
		Text:      "ATP is made in the mitochondria.",
		Sources:   []domain.Source{{Filename: "bio.md", ChunkIndex: 1, Score: 0.91}},
		Timestamp: testTime,
	}, nil
}

func (m *mockChatService) History(_ context.Context, limit int) ([]domain.ChatExchange, error) {
	m.limit = limit
	return m.history, m.err
}

func (m *mockChatService) ClearHistory(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}

// mockQuizService implements driving.QuizService.
type mockQuizService struct {
	err error
	req domain.QuizRequest
}

func (m *mockQuizService) Generate(_ context.Context, req domain.QuizRequest) ([]domain.QuizItem, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return []domain.QuizItem{
		{
			Question:     "Which organelle produces ATP?",
			Options:      []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi"},
			CorrectIndex: 1,
			Explanation:  "Mitochondria are the site of respiration.",
		},
	}, nil
}

// mockPlannerService implements driving.PlannerService.
type mockPlannerService struct {
	saved     *domain.StudyPlan
	err       error
	req       domain.PlanRequest
	gotID     string
	completed int
}

func samplePlan() *domain.StudyPlan {
	return &domain.StudyPlan{
		ExamDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Entries: []domain.StudyPlanEntry{
			{Day: 1, Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Subject: "Math", Hours: 2,
				Topics: []string{"Math - Topic 1", "Math - Topic 2"}},
			{Day: 2, Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Subject: "Physics", Hours: 2,
				Topics: []string{"Physics - Topic 1"}},
		},
		TotalDays:  2,
		TotalHours: 4,
		CreatedAt:  testTime,
	}
}

func (m *mockPlannerService) Build(_ context.Context, req domain.PlanRequest) (*domain.StudyPlan, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return samplePlan(), nil
}

func (m *mockPlannerService) Save(_ context.Context, plan *domain.StudyPlan) error {
	if m.err != nil {
		return m.err
	}
	plan.ID = "plan-1"
	m.saved = plan
	return nil
}

func (m *mockPlannerService) Get(_ context.Context, id string) (*domain.StudyPlan, error) {
	m.gotID = id
	if m.err != nil {
		return nil, m.err
	}
	p := samplePlan()
	p.ID = "plan-1"
	return p, nil
}

func (m *mockPlannerService) Complete(_ context.Context, id string, day int) (*domain.StudyPlan, error) {
	m.gotID = id
	m.completed = day
	if m.err != nil {
		return nil, m.err
	}
	p := samplePlan()
	if err := p.MarkCompleted(day); err != nil {
		return nil, err
	}
	return p, nil
}

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	err         error
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return m.err
}

func (m *mockSettingsService) SetChunking(size, overlap int) error {
	if m.err != nil {
		return m.err
	}
	if overlap >= size {
		return domain.ErrInvalidConfig
	}
	m.settings.Chunker = domain.ChunkerSettings{Size: size, Overlap: overlap}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.err != nil {
		return m.err
	}
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.err != nil {
		return m.err
	}
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetQuizSynthesizer(kind domain.QuizSynthesizerKind) error {
	if m.err != nil {
		return m.err
	}
	m.settings.Quiz = kind
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// mockConnector implements driven.Connector.
type mockConnector struct {
	root   string
	closed bool
}

func (m *mockConnector) Type() string                       { return "filesystem" }
func (m *mockConnector) Validate(_ context.Context) error   { return nil }
func (m *mockConnector) Close() error                       { m.closed = true; return nil }
func (m *mockConnector) FullSync(_ context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error)
	close(docs)
	close(errs)
	return docs, errs
}

func (m *mockConnector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	ch := make(chan domain.RawDocumentChange)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// mockFolderSync implements driving.FolderSyncService.
type mockFolderSync struct {
	subject string
	synced  []string
	err     error
	watched chan string
}

func (m *mockFolderSync) Sync(_ context.Context, connector driven.Connector) (*driving.SyncStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := connector.(*mockConnector); ok {
		m.synced = append(m.synced, c.root)
	}
	return &driving.SyncStatus{DocumentsProcessed: 2, Skipped: 1}, nil
}

func (m *mockFolderSync) Watch(ctx context.Context, connector driven.Connector) error {
	if m.watched != nil {
		if c, ok := connector.(*mockConnector); ok {
			m.watched <- c.root
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockFolderSync) Status() driving.SyncStatus {
	return driving.SyncStatus{}
}

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	document  *mockDocumentService
	retrieval *mockRetrievalService
	chat      *mockChatService
	quiz      *mockQuizService
	planner   *mockPlannerService
	settings  *mockSettingsService
	sync      *mockFolderSync
	opened    []string
}

// setupTestServices installs mocks for every service and returns a cleanup
// function that removes them and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		document: &mockDocumentService{docs: []domain.Document{
			{ID: "doc-1", Filename: "bio.md", Subject: "Biology", UploadedAt: testTime, ChunkIDs: []string{"c-0", "c-1"}},
			{ID: "doc-2", Filename: "notes.txt", UploadedAt: testTime, ChunkIDs: []string{"c-2"}},
		}},
		retrieval: &mockRetrievalService{results: []domain.QueryResult{
			{ChunkID: "c-1", DocumentID: "doc-1", Filename: "bio.md", ChunkIndex: 1, Score: 0.91,
				Text: "Mitochondria produce ATP."},
		}},
		chat: &mockChatService{history: []domain.ChatExchange{
			{ID: "ex-1", Query: "What makes ATP?", Answer: "Mitochondria.", Timestamp: testTime},
		}},
		quiz:     &mockQuizService{},
		planner:  &mockPlannerService{},
		settings: newMockSettingsService(),
		sync:     &mockFolderSync{},
	}

	SetServices(&Services{
		Document:  ts.document,
		Retrieval: ts.retrieval,
		Chat:      ts.chat,
		Quiz:      ts.quiz,
		Planner:   ts.planner,
		Settings:  ts.settings,
		FolderSync: func(subject string) driving.FolderSyncService {
			ts.sync.subject = subject
			return ts.sync
		},
		OpenFolder: func(path string) (driven.Connector, error) {
			ts.opened = append(ts.opened, path)
			return &mockConnector{root: path}, nil
		},
		ReadFile: func(path string) (*domain.RawDocument, error) {
			return &domain.RawDocument{URI: path, MIMEType: "text/plain", Content: []byte("text")}, nil
		},
	})

	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	verbose = false
	configDir = ""
	dataDir = ""
	materials = nil
	ingestSubject = ""
	documentListJSON = false
	documentShowChunks = false
	searchTopK = 0
	searchCmd.Flags().Lookup("top-k").Changed = false
	searchDocs = nil
	searchJSON = false
	askDocs = nil
	askJSON = false
	historyLimit = 10
	historyClear = false
	historyJSON = false
	quizTopic = ""
	quizNum = quizDefaultQuestions
	quizDocs = nil
	quizFormat = formatText
	quizInteractive = false
	planExamDate = ""
	planHours = 2
	planSubjects = nil
	planSave = false
	planFormat = formatText
	planID = ""
	chunkSize = domain.DefaultChunkSize
	chunkOverlap = domain.DefaultChunkOverlap
	mcpPort = 0
	mcpWatch = nil
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput(nil, args...)
}

func executeWithInput(in io.Reader, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if in != nil {
		rootCmd.SetIn(in)
	}
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
