package driven

import (
	"context"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// AnswerJournal records answered questions.
// Only answers are kept; embeddings never outlive a session.
type AnswerJournal interface {
	// Record stores an entry. The entry's ID must be set.
	Record(ctx context.Context, entry domain.JournalEntry) error

	// Get returns an entry by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.JournalEntry, error)

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)

	// Close releases resources.
	Close() error
}
