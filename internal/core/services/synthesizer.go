package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
)

// Ensure AnswerSynthesizer accepts a prompt store.
var _ driven.PromptStoreAware = (*AnswerSynthesizer)(nil)

// SynthesisTemperature keeps generation literal and repeatable.
const SynthesisTemperature = 0.2

// DefaultAnalysisPrompt is used when no PromptStore is configured.
const DefaultAnalysisPrompt = `You are a policy analyzer. Read the clauses below:

{{context}}

Question: "{{question}}"

Return a JSON object with exactly these fields, in this order:
{
  "answer": "...",
  "conditions": ["..."],
  "source_clauses": ["..."],
  "rationale": "..."
}
Respond with the JSON object only.`

// DefaultSystemPrompt is used when no PromptStore is configured.
const DefaultSystemPrompt = "You are a policy analyzer. Answer only from the supplied policy clauses " +
	"and reply with a single JSON object."

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptPolicyAnalysis: DefaultAnalysisPrompt,
		driven.PromptPolicySystem:   DefaultSystemPrompt,
	}
}

// AnswerSynthesizer asks a language model to answer a question from
// retrieved policy text and parses the structured reply.
type AnswerSynthesizer struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewAnswerSynthesizer creates a synthesizer backed by llm.
func NewAnswerSynthesizer(llm driven.LLMService) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerSynthesizer) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Synthesize answers query from the given policy clauses with one generation call.
// Unparseable replies are reported as domain.ErrMalformedResponse.
// Auth, quota and rate-limit failures match domain.ErrGenerationUnavailable.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, clauses, query string) (domain.AnswerRecord, error) {
	if s.llm == nil {
		return domain.AnswerRecord{}, fmt.Errorf("no LLM service configured: %w", domain.ErrGenerationUnavailable)
	}

	prompt := s.BuildPrompt(clauses, query)
	logger.Debug("Synthesis prompt: %d bytes, model %s", len(prompt), s.llm.ModelName())

	defer logger.Timed("generate answer")()
	reply, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      s.loadPrompt(driven.PromptPolicySystem, DefaultSystemPrompt),
		Temperature: SynthesisTemperature,
	})
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("generate answer: %w", err)
	}

	rec, err := ParseAnswerRecord(reply)
	if err != nil {
		logger.Warn("Unparseable model reply: %q", truncate(reply, 200))
		return domain.AnswerRecord{}, err
	}
	return rec, nil
}

// BuildPrompt fills the analysis template with the verbatim clauses and query.
func (s *AnswerSynthesizer) BuildPrompt(clauses, query string) string {
	tmpl := s.loadPrompt(driven.PromptPolicyAnalysis, DefaultAnalysisPrompt)
	return strings.NewReplacer("{{context}}", clauses, "{{question}}", query).Replace(tmpl)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnswerSynthesizer) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// ParseAnswerRecord decodes a model reply into an AnswerRecord.
// Surrounding prose and Markdown code fences are tolerated; the outermost
// JSON object must carry all four fields with the right types.
func ParseAnswerRecord(reply string) (domain.AnswerRecord, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return domain.AnswerRecord{}, fmt.Errorf("%w: no JSON object in reply", domain.ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(reply[start:end+1]), &fields); err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	var rec domain.AnswerRecord
	targets := []struct {
		key string
		dst any
	}{
		{"answer", &rec.Answer},
		{"conditions", &rec.Conditions},
		{"source_clauses", &rec.SourceClauses},
		{"rationale", &rec.Rationale},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return domain.AnswerRecord{}, fmt.Errorf("%w: missing field %q", domain.ErrMalformedResponse, t.key)
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return domain.AnswerRecord{}, fmt.Errorf("%w: field %q: %v", domain.ErrMalformedResponse, t.key, err)
		}
	}

	return rec.Normalised(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
