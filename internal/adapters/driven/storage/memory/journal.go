package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
)

// Ensure Journal implements the interface.
var _ driven.AnswerJournal = (*Journal)(nil)

// Journal is an in-memory implementation of driven.AnswerJournal.
// It is used when the SQLite journal is disabled.
type Journal struct {
	mu      sync.RWMutex
	entries map[string]domain.JournalEntry
	order   []string
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{
		entries: make(map[string]domain.JournalEntry),
	}
}

// Record stores an entry.
func (j *Journal) Record(_ context.Context, entry domain.JournalEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("journal entry id: %w", domain.ErrInvalidInput)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.entries[entry.ID]; !exists {
		j.order = append(j.order, entry.ID)
	}
	j.entries[entry.ID] = entry
	return nil
}

// Get retrieves an entry by ID.
func (j *Journal) Get(_ context.Context, id string) (*domain.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	entry, ok := j.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Recent returns up to limit entries, newest first.
// Entries with equal timestamps are returned in reverse insertion order.
func (j *Journal) Recent(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make([]domain.JournalEntry, 0, len(j.order))
	for i := len(j.order) - 1; i >= 0; i-- {
		result = append(result, j.entries[j.order[i]])
	}
	sort.SliceStable(result, func(a, b int) bool {
		return result[a].CreatedAt.After(result[b].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the memory journal.
func (j *Journal) Close() error {
	return nil
}
