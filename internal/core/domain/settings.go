package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in deterministic provider (no network).
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Built-in (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// QuizSynthesizerKind selects how quiz items are written.
type QuizSynthesizerKind string

// Available quiz synthesizers.
const (
	// QuizSynthesizerLLM asks the configured LLM for each item.
	QuizSynthesizerLLM QuizSynthesizerKind = "llm"

	// QuizSynthesizerExtractive builds cloze questions from the chunk text itself.
	QuizSynthesizerExtractive QuizSynthesizerKind = "extractive"
)

// IsValid returns true if the synthesizer kind is recognised.
func (k QuizSynthesizerKind) IsValid() bool {
	return k == QuizSynthesizerLLM || k == QuizSynthesizerExtractive
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size for the local provider.
	Dimensions int

	// RateLimit caps embedding calls per second (0 disables limiting).
	RateLimit float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider. The local provider has no LLM.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if a remote LLM is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerSettings controls how ingested text is split.
type ChunkerSettings struct {
	Size    int `validate:"gt=0"`
	Overlap int `validate:"gte=0,ltfield=Size"`
}

// AppSettings is the complete runtime configuration.
type AppSettings struct {
	Chunker   ChunkerSettings
	TopK      int `validate:"gt=0"`
	Workers   int `validate:"gt=0"`
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Quiz      QuizSynthesizerKind
}

// Defaults used when configuration is absent.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultIngestWorkers  = 4
	DefaultLocalDimension = 256
)

// DefaultAppSettings returns settings that work offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunker: ChunkerSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		TopK:    DefaultTopK,
		Workers: DefaultIngestWorkers,
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      "feature-hash",
			Dimensions: DefaultLocalDimension,
		},
		LLM: LLMSettings{
			Provider: AIProviderLocal,
		},
		Quiz: QuizSynthesizerExtractive,
	}
}

// DefaultOllamaURL is used when an Ollama provider has no base URL.
const DefaultOllamaURL = "http://localhost:11434"

// AllProviders returns every provider in display order.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "feature-hash",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
