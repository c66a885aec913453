// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/policylens/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/policylens/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/policylens/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/policylens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/policylens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI services available to the answer pipeline.
// A nil service means that tier is skipped and answers degrade.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Warnings  []string // Non-fatal issues that disabled a service.
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// Degraded returns true if any service is missing.
func (s *Services) Degraded() bool {
	return s.Embedding == nil || s.LLM == nil
}

// NewServices creates rate-limited AI services from settings.
// No provider is contacted. A service that cannot be created is left nil
// and explained in Warnings, unless strict is set, in which case the first
// failure is returned.
func NewServices(settings *domain.AppSettings, strict bool) (*Services, error) {
	out := &Services{}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil && strict:
		return nil, err
	case err != nil:
		out.warn("embedding disabled: %v", err)
	case embedding != nil:
		out.Embedding = NewRateLimitedEmbedding(embedding, NewLimiter(settings.RateLimit))
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil && strict:
		out.Close()
		return nil, err
	case err != nil:
		out.warn("generation disabled: %v", err)
	case llm != nil:
		out.LLM = NewRateLimitedLLM(llm, NewLimiter(settings.RateLimit))
	}

	return out, nil
}

func (s *Services) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	s.Warnings = append(s.Warnings, msg)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// This is intended for the settings command to validate credentials on configuration.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// This is intended for the settings command to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if no provider is selected. Missing credentials and providers
// without an embedding API are reported as domain.ErrConfiguration.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not provide embeddings, use ollama or openai",
			domain.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if no provider is selected. Missing credentials are reported
// as domain.ErrConfiguration.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		if settings.APIKey == "" {
			return nil, missingKey(settings.Provider)
		}
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrConfiguration, settings.Provider)
	}
}

func missingKey(provider domain.AIProvider) error {
	return fmt.Errorf("%w: %s requires %s to be set", domain.ErrConfiguration, provider, provider.APIKeyEnv())
}

