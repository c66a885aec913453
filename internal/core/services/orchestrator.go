package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
	"github.com/custodia-labs/policylens/internal/heuristic"
	"github.com/custodia-labs/policylens/internal/logger"
)

// Ensure Orchestrator and Session implement the interfaces.
var (
	_ driving.AnswerService = (*Orchestrator)(nil)
	_ driving.Session       = (*Session)(nil)
)

// passageSeparator joins retrieved passages into one context block.
const passageSeparator = "\n\n"

// OrchestratorConfig holds the collaborators of an Orchestrator.
// Embedding, LLM, Prompts and Journal are optional.
type OrchestratorConfig struct {
	// Extractor reads policy files. Required by Open.
	Extractor driven.Extractor

	// Pipeline chunks extracted text. Required.
	Pipeline driven.PostProcessorPipeline

	// Embedding powers retrieval. When nil every answer comes from the
	// whole-document heuristic.
	Embedding driven.EmbeddingService

	// LLM powers synthesis. When nil answers come from the heuristic over
	// retrieved passages.
	LLM driven.LLMService

	// Prompts overrides the built-in synthesis prompts.
	Prompts driven.PromptStore

	// Journal records every answer.
	Journal driven.AnswerJournal

	// TopK is the number of passages handed to synthesis.
	TopK int
}

// Orchestrator sequences chunking, retrieval and synthesis, falling back
// to keyword analysis when an AI service is unavailable.
type Orchestrator struct {
	extractor driven.Extractor
	pipeline  driven.PostProcessorPipeline
	retrieval *RetrievalIndex
	synth     *AnswerSynthesizer
	journal   driven.AnswerJournal
	topK      int
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("chunking pipeline is required: %w", domain.ErrInvalidInput)
	}

	o := &Orchestrator{
		extractor: cfg.Extractor,
		pipeline:  cfg.Pipeline,
		journal:   cfg.Journal,
		topK:      cfg.TopK,
	}
	if o.topK <= 0 {
		o.topK = domain.DefaultTopK
	}
	if cfg.Embedding != nil {
		o.retrieval = NewRetrievalIndex(cfg.Embedding)
	}
	if cfg.LLM != nil {
		o.synth = NewAnswerSynthesizer(cfg.LLM)
		if cfg.Prompts != nil {
			o.synth.SetPromptStore(cfg.Prompts)
		}
	}

	logger.Debug("Orchestrator services: embedding=%t, llm=%t, journal=%t, top_k=%d",
		o.retrieval != nil, o.synth != nil, o.journal != nil, o.topK)
	return o, nil
}

// Open extracts the document at path and starts a session over it.
func (o *Orchestrator) Open(ctx context.Context, path string) (driving.Session, error) {
	if o.extractor == nil {
		return nil, fmt.Errorf("no extractor configured: %w", domain.ErrConfiguration)
	}

	logger.Section("Extract")
	doc, err := o.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded %q (%d bytes of text)", doc.URI, len(doc.Content))

	return o.OpenDocument(doc), nil
}

// OpenDocument starts a session over an already extracted document.
func (o *Orchestrator) OpenDocument(doc *domain.Document) driving.Session {
	return &Session{
		id:    uuid.New().String(),
		orch:  o,
		doc:   doc,
		state: domain.StateStart,
	}
}

// Session answers questions about one document. The index is built
// lazily on the first question and reused for later ones.
// Ask calls are serialised.
type Session struct {
	mu     sync.Mutex
	id     string
	orch   *Orchestrator
	doc    *domain.Document
	state  domain.SessionState
	last   domain.SessionState
	chunks []domain.Chunk
	index  *Index
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Document returns the document under analysis.
func (s *Session) Document() *domain.Document {
	return s.doc
}

// State returns the current preparation state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastState returns the terminal state of the most recent answer.
func (s *Session) LastState() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Ask answers one question using the best tier available.
func (s *Session) Ask(ctx context.Context, query string) (*domain.Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Ask")
	logger.Debug("Question: %q", query)

	if err := s.prepare(ctx); err != nil {
		return nil, err
	}

	var outcome *domain.Outcome
	if s.state == domain.StateHeuristicFromText || len(s.chunks) == 0 {
		outcome = s.fromText(query, domain.StateIndexed)
	} else {
		var err error
		outcome, err = s.answer(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	s.last = outcome.Tier.State()
	s.record(ctx, outcome)
	return outcome, nil
}

// prepare advances Start -> Chunked -> Indexed, or to HeuristicFromText when
// embeddings are unavailable. A failed build leaves the session Chunked so
// the next question may try again.
func (s *Session) prepare(ctx context.Context) error {
	if s.state == domain.StateStart {
		chunks, err := s.orch.pipeline.Process(ctx, s.doc)
		if err != nil {
			return fmt.Errorf("chunk document: %w", err)
		}
		s.chunks = chunks
		s.transition(domain.StateChunked, fmt.Sprintf("%d chunks", len(chunks)))
	}

	if s.state != domain.StateChunked {
		return nil
	}
	if s.orch.retrieval == nil {
		s.transition(domain.StateHeuristicFromText, "no embedding service")
		return nil
	}

	idx, err := s.orch.retrieval.Build(ctx, s.chunks)
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		logger.Warn("Embedding unavailable, using keyword analysis: %v", err)
		s.transition(domain.StateHeuristicFromText, "embedding unavailable")
		return nil
	case err != nil:
		return fmt.Errorf("build index: %w", err)
	}
	s.index = idx
	s.transition(domain.StateIndexed, "")
	return nil
}

// answer runs retrieval and synthesis from the Indexed state.
func (s *Session) answer(ctx context.Context, query string) (*domain.Outcome, error) {
	passages, err := s.index.Query(ctx, query, s.orch.topK)
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		logger.Warn("Query embedding unavailable, using keyword analysis: %v", err)
		return s.fromText(query, domain.StateIndexed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	for i, p := range passages {
		logger.Debug("Passage %d: chunk %d, score %.4f", i+1, p.Chunk.Position, p.Score)
	}

	clauses := JoinPassages(passages)
	if s.orch.synth == nil {
		logger.Transition(string(domain.StateIndexed), string(domain.StateHeuristicFromContext), "no LLM service")
		return s.fromContext(query, clauses, passages), nil
	}

	rec, err := s.orch.synth.Synthesize(ctx, clauses, query)
	if errors.Is(err, domain.ErrGenerationUnavailable) {
		logger.Warn("Generation unavailable, using keyword analysis: %v", err)
		logger.Transition(string(domain.StateIndexed), string(domain.StateHeuristicFromContext), "generation unavailable")
		return s.fromContext(query, clauses, passages), nil
	}
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	logger.Transition(string(domain.StateIndexed), string(domain.StateAnswered), "")
	return &domain.Outcome{
		Query:    query,
		Record:   rec,
		Tier:     domain.TierFull,
		Passages: passages,
	}, nil
}

func (s *Session) fromText(query string, from domain.SessionState) *domain.Outcome {
	if s.state != domain.StateHeuristicFromText {
		logger.Transition(string(from), string(domain.StateHeuristicFromText), "")
	}
	return &domain.Outcome{
		Query:    query,
		Record:   heuristic.Analyze(s.doc.Content, query),
		Tier:     domain.TierHeuristicText,
		Passages: []domain.RetrievedPassage{},
	}
}

func (s *Session) fromContext(query, clauses string, passages []domain.RetrievedPassage) *domain.Outcome {
	return &domain.Outcome{
		Query:    query,
		Record:   heuristic.Analyze(clauses, query),
		Tier:     domain.TierHeuristicContext,
		Passages: passages,
	}
}

func (s *Session) transition(to domain.SessionState, reason string) {
	logger.Transition(string(s.state), string(to), reason)
	s.state = to
}

// record writes the outcome to the journal. Journal failures never fail an answer.
func (s *Session) record(ctx context.Context, outcome *domain.Outcome) {
	if s.orch.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		ID:          uuid.New().String(),
		SessionID:   s.id,
		DocumentURI: s.doc.URI,
		Query:       outcome.Query,
		Tier:        outcome.Tier,
		Record:      outcome.Record,
		CreatedAt:   time.Now(),
	}
	if err := s.orch.journal.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record answer: %v", err)
	}
}

// JoinPassages concatenates passage text in rank order.
func JoinPassages(passages []domain.RetrievedPassage) string {
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Chunk.Content
	}
	return strings.Join(parts, passageSeparator)
}
