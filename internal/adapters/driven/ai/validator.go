package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/preppal/internal/core/domain"
	"github.com/custodia-labs/preppal/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved by building
// the adapter they describe and pinging it once.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout bounds each connectivity check. Non-positive values are ignored.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator that waits up to pingTimeout per check.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding accepts the offline embedder as is. Remote providers must
// have their key and answer a ping.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || config.Provider == "" || config.Provider == domain.AIProviderLocal {
		return nil
	}
	if err := checkProvider(config.Provider, config.APIKey); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer svc.Close()

	return v.ping(svc, domain.ErrEmbeddingUnavailable, config.Provider)
}

// ValidateLLM accepts "no LLM" as is. Remote providers must have their key
// and answer a ping.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" || config.Provider == domain.AIProviderLocal {
		return nil
	}
	if err := checkProvider(config.Provider, config.APIKey); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	svc, err := CreateLLMService(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	return v.ping(svc, domain.ErrLLMUnavailable, config.Provider)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (v *ConfigValidator) ping(svc pinger, sentinel error, provider domain.AIProvider) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s did not answer within %s: %w", sentinel, provider, v.timeout, err)
	}
	return nil
}

func checkProvider(provider domain.AIProvider, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidConfig, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidConfig, provider)
	}
	return nil
}
