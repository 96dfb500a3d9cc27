// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/preppal/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/preppal/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/preppal/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/preppal/internal/adapters/driven/embedding/ratelimit"
	ollamallm "github.com/custodia-labs/preppal/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/preppal/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/preppal/internal/adapters/driven/synthesis"
	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
	"github.com/custodia-labs/preppal/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil when no LLM is configured.
	Synthesizer      driven.QuizSynthesizer
	TopicBreakdown   driven.TopicBreakdown // Nil when no LLM is configured.
	Warnings         []string              // Non-fatal issues that caused fallback.
	FellBack         bool                  // True if a remote provider was replaced by an offline one.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds every AI collaborator the services need. Remote providers
// that cannot be created or reached are replaced with the offline ones and the
// reason is recorded in Warnings. Prompt-aware adapters receive prompts.
func Initialise(settings *domain.AppSettings, prompts driven.PromptStore) *InitResult {
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.warn("embedding: %v", err)
		embedder = nil
	}
	if embedder == nil {
		embedder = localembed.NewEmbeddingService(settings.Embedding.Dimensions)
	}
	result.EmbeddingService = embedder

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.warn("llm: %v", err)
		llm = nil
	}
	result.LLMService = llm

	if settings.Quiz == domain.QuizSynthesizerLLM && llm == nil {
		result.warn("quiz: no LLM available, using extractive questions")
	}
	result.Synthesizer = CreateQuizSynthesizer(settings.Quiz, llm)
	result.TopicBreakdown = CreateTopicBreakdown(llm)

	if prompts != nil {
		for _, v := range []any{result.Synthesizer, result.TopicBreakdown} {
			if aware, ok := v.(driven.PromptStoreAware); ok {
				aware.SetPromptStore(prompts)
			}
		}
	}

	return result
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
	r.FellBack = true
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'preppal settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'preppal settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no remote LLM is configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'preppal settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'preppal settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateEmbeddingService creates the embedding service named by settings,
// wrapped in a rate limiter when settings.RateLimit is positive.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidConfig)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderLocal:
		svc = localembed.NewEmbeddingService(settings.Dimensions)

	case domain.AIProviderOllama:
		svc, err = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, settings.RateLimit, 0), nil
}

// CreateLLMService creates the LLM service named by settings.
// The local provider has no LLM and returns nil.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no LLM settings", domain.ErrInvalidConfig)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return nil, nil

	case domain.AIProviderOllama:
		return createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateQuizSynthesizer picks the quiz writer. The LLM synthesizer is only
// used when asked for and an LLM is available.
func CreateQuizSynthesizer(kind domain.QuizSynthesizerKind, llm driven.LLMService) driven.QuizSynthesizer {
	if kind == domain.QuizSynthesizerLLM && llm != nil {
		return synthesis.NewLLMQuizSynthesizer(llm)
	}
	return synthesis.NewExtractiveSynthesizer()
}

// CreateTopicBreakdown returns an LLM-backed topic breakdown, or nil when
// there is no LLM and plans keep placeholder topics.
func CreateTopicBreakdown(llm driven.LLMService) driven.TopicBreakdown {
	if llm == nil {
		return nil
	}
	return synthesis.NewLLMTopicBreakdown(llm)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
