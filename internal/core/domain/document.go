package domain

// Document represents the extracted text of a single policy document.
// It is immutable once loaded.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after extraction.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs (format, mime type).
	Metadata map[string]any
}

// Chunk is a contiguous segment of a Document's text.
// Chunks are created once by the chunker and never mutated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start is the byte offset of Content within the document text.
	Start int
}

// End returns the byte offset just past the chunk within the document text.
func (c Chunk) End() int {
	return c.Start + len(c.Content)
}

// RetrievedPassage is a chunk plus its relevance score for one query.
// Higher scores are more relevant.
type RetrievedPassage struct {
	Chunk Chunk
	Score float64
}
