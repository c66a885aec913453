package driving

import (
	"context"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// AnswerService loads policy documents into question-answering sessions.
type AnswerService interface {
	// Open extracts the document at path and starts a session over it.
	// Extraction failures wrap domain.ErrExtraction.
	Open(ctx context.Context, path string) (Session, error)

	// OpenDocument starts a session over an already extracted document.
	OpenDocument(doc *domain.Document) Session
}

// Session answers questions about one document.
// The retrieval index is built on the first question and reused.
type Session interface {
	// ID returns the session identifier.
	ID() string

	// Document returns the document under analysis.
	Document() *domain.Document

	// State returns the current preparation state: Start, Chunked, Indexed
	// or HeuristicFromText.
	State() domain.SessionState

	// LastState returns the terminal state of the most recent successful
	// Ask, or "" before the first answer.
	LastState() domain.SessionState

	// Ask answers one question. It returns exactly one Outcome or one error.
	Ask(ctx context.Context, query string) (*domain.Outcome, error)
}
