package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/postprocessors/chunker"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestRegistry_BuildAndHas(t *testing.T) {
	r := NewRegistry()
	if r.Has("test") {
		t.Error("expected empty registry")
	}

	r.Register("test", func(cfg map[string]any) (driven.PostProcessor, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockProcessor{name: name}, nil
	})

	if !r.Has("test") {
		t.Error("expected 'test' to be registered")
	}

	proc, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	_, err := NewRegistry().Build("stemmer", nil)
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	noop := func(_ map[string]any) (driven.PostProcessor, error) { return &registryMockProcessor{}, nil }
	r.Register("beta", noop)
	r.Register("alpha", noop)

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected [alpha beta], got %v", names)
	}
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	t.Run("from config", func(t *testing.T) {
		p, err := r.BuildPipeline(domain.DefaultPipelineConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Len() != 1 {
			t.Errorf("expected 1 processor, got %d", p.Len())
		}
	})

	t.Run("empty config", func(t *testing.T) {
		_, err := r.BuildPipeline(domain.PipelineConfig{})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown processor", func(t *testing.T) {
		_, err := r.BuildPipeline(domain.PipelineConfig{Processors: []string{"chunker", "stemmer"}})
		if !errors.Is(err, domain.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", err)
		}
	})
}

func TestBuildChunker_WithConfig(t *testing.T) {
	proc, err := buildChunker(map[string]any{"chunk_size": int64(800), "overlap": float64(50)})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	c, ok := proc.(*chunker.Processor)
	if !ok {
		t.Fatalf("expected *chunker.Processor, got %T", proc)
	}
	if c.ChunkSize() != 800 || c.Overlap() != 50 {
		t.Errorf("expected 800/50, got %d/%d", c.ChunkSize(), c.Overlap())
	}
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	proc, err := buildChunker(nil)
	if err != nil {
		t.Fatalf("Build chunker with nil config failed: %v", err)
	}

	c := proc.(*chunker.Processor)
	if c.ChunkSize() != chunker.DefaultChunkSize || c.Overlap() != chunker.DefaultChunkOverlap {
		t.Errorf("expected defaults, got %d/%d", c.ChunkSize(), c.Overlap())
	}
}

func TestLookupInt(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		expected int
		found    bool
	}{
		{"int value", map[string]any{"size": 100}, 100, true},
		{"int64 value", map[string]any{"size": int64(200)}, 200, true},
		{"float64 value", map[string]any{"size": float64(300)}, 300, true},
		{"zero is found", map[string]any{"size": 0}, 0, true},
		{"string value", map[string]any{"size": "400"}, 0, false},
		{"missing key", map[string]any{"other": 100}, 0, false},
		{"nil config", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookupInt(tt.cfg, "size")
			if got != tt.expected || ok != tt.found {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.expected, tt.found, got, ok)
			}
		})
	}
}
