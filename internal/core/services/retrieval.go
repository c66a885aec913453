package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
)

// RetrievalIndex builds in-memory semantic indexes over document chunks.
type RetrievalIndex struct {
	embedder driven.EmbeddingService
}

// NewRetrievalIndex creates a retrieval index builder backed by embedder.
func NewRetrievalIndex(embedder driven.EmbeddingService) *RetrievalIndex {
	return &RetrievalIndex{embedder: embedder}
}

// Index holds the chunk and vector pairs of one document.
// It lives only as long as the session that built it.
type Index struct {
	embedder driven.EmbeddingService
	chunks   []domain.Chunk
	vectors  [][]float32
	dims     int
}

// Build embeds every chunk in a single batched provider call.
// Zero chunks produce an empty index without contacting the provider.
// Auth, quota and rate-limit failures match domain.ErrEmbeddingUnavailable.
func (r *RetrievalIndex) Build(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedding service configured: %w", domain.ErrEmbeddingUnavailable)
	}

	idx := &Index{embedder: r.embedder}
	if len(chunks) == 0 {
		return idx, nil
	}

	defer logger.Timed("embed chunks")()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: embedding provider returned %d vectors for %d chunks",
			domain.ErrMalformedResponse, len(vectors), len(chunks))
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrMalformedResponse, i, len(v), dims)
		}
	}

	idx.chunks = append([]domain.Chunk(nil), chunks...)
	idx.vectors = vectors
	idx.dims = dims
	logger.Debug("Indexed %d chunks (%d dimensions, model %s)", len(chunks), dims, r.embedder.ModelName())
	return idx, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Query embeds text with one provider call and returns the k most similar
// chunks by cosine similarity, best first. Equal scores keep chunk order.
// k <= 0 selects domain.DefaultTopK; k larger than the index returns every chunk.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]domain.RetrievedPassage, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	if len(idx.chunks) == 0 {
		return []domain.RetrievedPassage{}, nil
	}

	query, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index has %d",
			domain.ErrMalformedResponse, len(query), idx.dims)
	}

	passages := make([]domain.RetrievedPassage, len(idx.chunks))
	for i, c := range idx.chunks {
		passages[i] = domain.RetrievedPassage{
			Chunk: c,
			Score: cosine(query, idx.vectors[i]),
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if k > len(passages) {
		k = len(passages)
	}
	return passages[:k], nil
}

// cosine returns the cosine similarity of a and b, or 0 if either is zero.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
