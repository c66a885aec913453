package driving

import (
	"context"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// HistoryService exposes previously answered questions.
type HistoryService interface {
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)

	// Get returns one entry by ID.
	Get(ctx context.Context, id string) (*domain.JournalEntry, error)
}
