package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is used when no limit is given.
const DefaultHistoryLimit = 20

// HistoryService reads answered questions from the journal.
type HistoryService struct {
	journal driven.AnswerJournal
}

// NewHistoryService creates a history service over journal.
func NewHistoryService(journal driven.AnswerJournal) *HistoryService {
	return &HistoryService{journal: journal}
}

// Recent returns up to limit entries, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}

// Get returns one entry by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if id == "" {
		return nil, fmt.Errorf("entry id: %w", domain.ErrInvalidInput)
	}
	return s.journal.Get(ctx, id)
}
