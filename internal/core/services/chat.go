package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/core/ports/driving"
	"github.com/custodia-labs/preppal/internal/logger"
)

// Ensure ChatService implements the interfaces.
var (
	_ driving.ChatService     = (*ChatService)(nil)
	_ driven.PromptStoreAware = (*ChatService)(nil)
)

const (
	// AnswerContextChunks is how many chunks ground an answer unless
	// WithContextChunks says otherwise.
	AnswerContextChunks = 5

	// NoMaterialsAnswer is returned when nothing has been ingested yet.
	NoMaterialsAnswer = "I don't have any study materials to reference yet. Please upload some documents first!"

	fallbackAnswerHeader = "No language model is configured. The most relevant passages from your study materials are:"
	answerMaxTokens      = 800
	answerTemperature    = 0.3
)

// ChatService answers questions from the indexed study materials and keeps
// a history of exchanges.
type ChatService struct {
	retriever driving.RetrievalService
	llm       driven.LLMService
	history   driven.HistoryStore
	now       func() time.Time
	topK      int

	mu      sync.RWMutex
	prompts driven.PromptStore
}

// NewChatService creates a new chat service. llm may be nil, in which case
// answers quote the retrieved passages. history may be nil.
func NewChatService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	history driven.HistoryStore,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		retriever: retriever,
		llm:       llm,
		history:   history,
		now:       time.Now,
		topK:      AnswerContextChunks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithContextChunks sets how many retrieved chunks ground each answer.
// Non-positive values keep AnswerContextChunks.
func WithContextChunks(n int) ChatOption {
	return func(s *ChatService) {
		if n > 0 {
			s.topK = n
		}
	}
}

// SetPromptStore implements driven.PromptStoreAware.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = store
}

// Ask answers question using the chunks most relevant to it.
func (s *ChatService) Ask(ctx context.Context, question string, docIDs []string) (*domain.Answer, error) {
	logger.Section("Ask")
	start := time.Now()

	results, err := s.retriever.Retrieve(ctx, question, docIDs, s.topK)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	logger.Since("Retrieval", start)

	answer := &domain.Answer{
		Query:     question,
		Sources:   make([]domain.Source, 0, len(results)),
		Timestamp: s.now(),
	}
	for _, r := range results {
		answer.Sources = append(answer.Sources, domain.SourceOf(r))
	}

	switch {
	case len(results) == 0:
		answer.Text = NoMaterialsAnswer
	case s.llm == nil:
		logger.Debug("No LLM configured, quoting %d passages", len(results))
		answer.Text = fallbackAnswerHeader + "\n\n" + domain.FormatContext(results)
	default:
		prompt := fmt.Sprintf(s.prompt(), domain.FormatContext(results), question)
		text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   answerMaxTokens,
			Temperature: answerTemperature,
		})
		if err != nil {
			logger.Warn("Answer generation failed: %v", err)
			return nil, fmt.Errorf("%w: answer: %w", domain.ErrGenerationFailed, err)
		}
		answer.Text = strings.TrimSpace(text)
		logger.Since("Generation", start)
	}

	s.record(ctx, answer)
	return answer, nil
}

// record appends the exchange to history. A history failure never fails the
// question.
func (s *ChatService) record(ctx context.Context, answer *domain.Answer) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, domain.ExchangeOf(uuid.New().String(), answer)); err != nil {
		logger.Warn("Failed to record chat history: %v", err)
	}
}

func (s *ChatService) prompt() string {
	s.mu.RLock()
	store := s.prompts
	s.mu.RUnlock()
	if store != nil {
		if p, err := store.Load(driven.PromptAnswer); err == nil {
			return p
		}
	}
	return driven.DefaultPrompt(driven.PromptAnswer)
}

// History returns up to limit recent exchanges, oldest first. limit <= 0
// returns everything.
func (s *ChatService) History(ctx context.Context, limit int) ([]domain.ChatExchange, error) {
	if s.history == nil {
		return []domain.ChatExchange{}, nil
	}
	return s.history.List(ctx, limit)
}

// ClearHistory forgets every exchange.
func (s *ChatService) ClearHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx)
}
