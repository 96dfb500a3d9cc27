package driven

import "github.com/custodia-labs/preppal/internal/core/domain"

// AIConfigValidator checks provider settings before the settings service
// saves them.
type AIConfigValidator interface {
	// ValidateEmbedding returns nil for the offline embedder. A remote
	// provider must be reachable; failures wrap domain.ErrEmbeddingUnavailable.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM returns nil when no LLM is chosen. A remote provider must
	// be reachable; failures wrap domain.ErrLLMUnavailable.
	ValidateLLM(config *domain.LLMSettings) error
}
