package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name     string
	chunks   []domain.Chunk
	err      error
	received []domain.Chunk
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	m.received = chunks
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), &domain.Document{Content: "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks == nil || len(chunks) != 0 {
		t.Errorf("expected empty non-nil chunks, got %v", chunks)
	}
}

func TestPipeline_Process_ChainsProcessors(t *testing.T) {
	first := &mockProcessor{name: "first", chunks: []domain.Chunk{{ID: "c1", Content: "first"}}}
	second := &mockProcessor{name: "second"}

	p := NewPipeline(first)
	p.Add(second)

	chunks, err := p.Process(context.Background(), &domain.Document{ID: "doc", Content: "first"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.received != nil {
		t.Error("first processor should receive nil chunks")
	}
	if len(second.received) != 1 {
		t.Errorf("second processor should receive first's output, got %d", len(second.received))
	}
	if len(chunks) != 1 || chunks[0].ID != "c1" {
		t.Errorf("unexpected output %v", chunks)
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 processors, got %d", p.Len())
	}
	if names := p.Names(); len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), &domain.Document{Content: "x"})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
}

func TestNewDefaultPipeline_ChunksPolicyText(t *testing.T) {
	p, err := NewDefaultPipeline(domain.ChunkerSettings{Size: 120, Overlap: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := &domain.Document{
		ID: "policy",
		Content: "Knee replacement surgery is covered subject to prior approval.\n\n" +
			"Cosmetic procedures are excluded. Emergency admissions are covered up to a maximum of $5,000.\n\n" +
			"Pre-existing conditions are subject to a waiting period of twelve months.",
	}

	chunks, err := p.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Content) > 120 {
			t.Errorf("chunk exceeds configured size: %d", len(c.Content))
		}
	}
}
