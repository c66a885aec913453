package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
)

// --- Mock implementations ---

// vocabulary defines the dimensions of keywordVector.
var vocabulary = []string{"knee", "surgery", "cosmetic", "dental", "maximum", "emergency", "approval"}

// keywordVector counts vocabulary terms so similar texts get similar vectors.
func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(vocabulary))
	for i, term := range vocabulary {
		v[i] = float32(strings.Count(lower, term))
	}
	return v
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vectorFor  func(text string) []float32
	batch      [][]float32
	batchErr   error
	embedErr   error
	batchCalls int
	embedCalls int
	batchSizes []int
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if m.vectorFor != nil {
		return m.vectorFor(text)
	}
	return keywordVector(text)
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batch != nil {
		return m.batch, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return len(vocabulary) }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	return m.reply, m.err
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	doc *domain.Document
	err error
}

func (m *mockExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := *m.doc
	doc.URI = path
	return &doc, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingJournal implements driven.AnswerJournal and rejects every write.
type failingJournal struct{}

func (failingJournal) Record(context.Context, domain.JournalEntry) error {
	return errors.New("disk full")
}
func (failingJournal) Get(context.Context, string) (*domain.JournalEntry, error) {
	return nil, domain.ErrNotFound
}
func (failingJournal) Recent(context.Context, int) ([]domain.JournalEntry, error) {
	return nil, errors.New("disk full")
}
func (failingJournal) Close() error { return nil }

// Provider errors as adapters produce them.
var (
	embeddingQuotaErr = &domain.ProviderError{
		Service: domain.ServiceEmbedding, Provider: domain.AIProviderOpenAI,
		Reason: domain.ReasonQuota, StatusCode: 429, Message: "You exceeded your current quota",
	}
	embeddingTransientErr = &domain.ProviderError{
		Service: domain.ServiceEmbedding, Provider: domain.AIProviderOpenAI,
		Reason: domain.ReasonTransient, StatusCode: 503,
	}
	generationAuthErr = &domain.ProviderError{
		Service: domain.ServiceGeneration, Provider: domain.AIProviderOpenAI,
		Reason: domain.ReasonAuth, StatusCode: 401,
	}
	generationRateErr = &domain.ProviderError{
		Service: domain.ServiceGeneration, Provider: domain.AIProviderAnthropic,
		Reason: domain.ReasonRateLimit, StatusCode: 429,
	}
)

// validReply is a well-formed model answer.
const validReply = `{"answer":"Yes, knee surgery is covered.","conditions":["Requires prior approval"],` +
	`"source_clauses":["Section 3"],"rationale":"Section 3 covers knee replacement."}`

func makeChunks(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	offset := 0
	for i, t := range texts {
		chunks[i] = domain.Chunk{ID: t, DocumentID: "doc", Content: t, Position: i, Start: offset}
		offset += len(t)
	}
	return chunks
}

func errorIs(err, target error) bool {
	return errors.Is(err, target)
}
