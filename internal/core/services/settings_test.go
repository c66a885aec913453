package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policylens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error
	embedding    *domain.EmbeddingSettings
	llm          *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

func credentialsFrom(values map[string]string) CredentialLookup {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok && v != ""
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil, nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "gpt-3.5-turbo", settings.LLM.Model)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunker.Size)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Chunker.Overlap)
	assert.Equal(t, domain.DefaultTopK, settings.Retrieval.TopK)
	assert.Equal(t, defaults.RateLimit, settings.RateLimit)
	assert.True(t, settings.Journal.Enabled)
	assert.Empty(t, settings.Embedding.APIKey)
	assert.Empty(t, settings.LLM.APIKey)
}

func TestSettingsService_GetFromStore(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":            "ollama",
		"embedding.base_url":            "http://gpu:11434",
		"llm.provider":                  "anthropic",
		"llm.model":                     "claude-3-5-haiku-latest",
		"chunker.chunk_size":            800,
		"chunker.overlap":               200,
		"retrieval.top_k":               5,
		"ratelimit.requests_per_second": 0.5,
		"journal.enabled":               false,
	})
	svc := NewSettingsService(store, nil, credentialsFrom(map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-test",
	}))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOllama], settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant-test", settings.LLM.APIKey)
	assert.Equal(t, 800, settings.Chunker.Size)
	assert.Equal(t, 200, settings.Chunker.Overlap)
	assert.Equal(t, 5, settings.Retrieval.TopK)
	assert.InDelta(t, 0.5, settings.RateLimit.RequestsPerSecond, 1e-9)
	assert.False(t, settings.Journal.Enabled)
}

func TestSettingsService_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.provider": "skynet"})
	settings, err := NewSettingsService(store, nil, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().LLM.Provider, settings.LLM.Provider)
}

func TestSettingsService_SaveNeverWritesCredentials(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil, credentialsFrom(map[string]string{
		"OPENAI_API_KEY": "sk-secret",
	}))

	settings, err := svc.Get()
	require.NoError(t, err)
	require.Equal(t, "sk-secret", settings.LLM.APIKey)

	require.NoError(t, svc.Save(settings))
	for _, key := range []string{"embedding.api_key", "llm.api_key"} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
	assert.Equal(t, "openai", store.GetString("llm.provider"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil, nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, ""))
	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOllama], store.GetString("embedding.model"))
	assert.Equal(t, "http://localhost:11434", store.GetString("embedding.base_url"))

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large"))
	assert.Equal(t, "text-embedding-3-large", store.GetString("embedding.model"))
	assert.Empty(t, store.GetString("embedding.base_url"))

	err := svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.SetEmbeddingProvider(domain.AIProvider("nope"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil, nil)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, ""))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], store.GetString("llm.model"))

	err := svc.SetLLMProvider(domain.AIProvider(""), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		err := NewSettingsService(memory.NewConfigStore(), nil, nil).Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("credentials present", func(t *testing.T) {
		svc := NewSettingsService(memory.NewConfigStore(), nil, credentialsFrom(map[string]string{
			"OPENAI_API_KEY": "sk-test",
		}))
		assert.NoError(t, svc.Validate())
	})

	t.Run("local providers need no credential", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			"embedding.provider": "ollama",
			"llm.provider":       "ollama",
		})
		assert.NoError(t, NewSettingsService(store, nil, nil).Validate())
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		store := memory.NewConfigStore(map[string]any{
			"embedding.provider": "ollama",
			"llm.provider":       "ollama",
			"chunker.chunk_size": 100,
			"chunker.overlap":    100,
		})
		err := NewSettingsService(store, nil, nil).Validate()
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "overlap")
	})
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	validator := &mockAIValidator{llmErr: errors.New("unreachable")}
	svc := NewSettingsService(memory.NewConfigStore(), validator, credentialsFrom(map[string]string{
		"OPENAI_API_KEY": "sk-test",
	}))

	require.NoError(t, svc.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedding)
	assert.Equal(t, "sk-test", validator.embedding.APIKey)

	assert.Error(t, svc.ValidateLLMConfig())

	noValidator := NewSettingsService(memory.NewConfigStore(), nil, nil)
	assert.NoError(t, noValidator.ValidateEmbeddingConfig())
	assert.NoError(t, noValidator.ValidateLLMConfig())
}

func TestMaskCredential(t *testing.T) {
	assert.Equal(t, "", MaskCredential(""))
	assert.Equal(t, "****", MaskCredential("short"))
	assert.Equal(t, "****cdef", MaskCredential("sk-0123456789abcdef"))
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("POLICYLENS_TEST_KEY", "value")
	v, ok := EnvCredentials("POLICYLENS_TEST_KEY")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	t.Setenv("POLICYLENS_TEST_EMPTY", "")
	_, ok = EnvCredentials("POLICYLENS_TEST_EMPTY")
	assert.False(t, ok)

	_, ok = EnvCredentials("")
	assert.False(t, ok)
}
