// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of bytes per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of bytes shared with the previous chunk.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document content into bounded, overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := Split(doc.Content, p.chunkSize, p.overlap)
	chunks := make([]domain.Chunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    seg.Text,
			Position:   i,
			Start:      seg.Start,
		})
	}

	return chunks, nil
}

// Segment is a slice of the input text and its byte offset.
type Segment struct {
	Start int
	Text  string
}

// boundaries lists break points in preference order. The cut is made at
// offset+len(sep) past the last match, so the separator stays with the
// earlier chunk.
var boundaries = []string{"\n\n", "\n", ". ", "! ", "? "}

// Split cuts text into segments of at most maxLen bytes, each starting
// overlap bytes before the end of its predecessor. Cuts prefer paragraph
// breaks, then line breaks, then sentence ends, then any whitespace, and
// fall back to a hard cut on a rune boundary. Whitespace-only segments are
// dropped. Empty text yields no segments.
func Split(text string, maxLen, overlap int) []Segment {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}
	if overlap < 0 || overlap >= maxLen {
		overlap = maxLen / 4
	}

	n := len(text)
	if n == 0 {
		return []Segment{}
	}

	segments := make([]Segment, 0, n/(maxLen-overlap)+1)
	start := 0
	for start < n {
		end := start + maxLen
		if end >= n {
			end = n
		} else {
			end = cutPoint(text, start, end)
		}

		if piece := text[start:end]; strings.TrimSpace(piece) != "" {
			segments = append(segments, Segment{Start: start, Text: piece})
		}
		if end == n {
			break
		}

		// An early cut can leave less than overlap bytes in the window.
		next := end - overlap
		if next <= start {
			next = end
		}
		for next < end && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return segments
}

// cutPoint returns the preferred end offset for a window [start, end).
// Only the back half of the window is searched so chunks stay reasonably full.
func cutPoint(text string, start, end int) int {
	floor := start + (end-start)/2
	window := text[floor:end]

	for _, sep := range boundaries {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return floor + i + len(sep)
		}
	}
	if i := strings.LastIndexAny(window, " \t\r\n"); i >= 0 {
		return floor + i + 1
	}

	// Hard cut, backing off to the start of a UTF-8 sequence.
	cut := end
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut > start {
		return cut
	}

	// The first rune alone is wider than the window; keep it whole.
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return end
}
