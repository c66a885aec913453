package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

type mockHistory struct {
	entries []domain.JournalEntry
	err     error
	limit   int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.JournalEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func entries() []domain.JournalEntry {
	return []domain.JournalEntry{
		{
			ID:          "2",
			DocumentURI: "/tmp/policy.pdf",
			Query:       "Is dental covered?",
			Tier:        domain.TierHeuristicContext,
			Record: domain.AnswerRecord{
				Answer:        "Dental is covered for accidents only.",
				Conditions:    []string{"Accidental injury"},
				SourceClauses: []string{"Section 7"},
			},
			CreatedAt: time.Now(),
		},
		{
			ID:          "1",
			DocumentURI: "/tmp/policy.pdf",
			Query:       "Is knee surgery covered?",
			Tier:        domain.TierFull,
			Record:      domain.AnswerRecord{Answer: "Yes."},
			CreatedAt:   time.Now().Add(-time.Minute),
		},
	}
}

func TestView_LoadAndRender(t *testing.T) {
	history := &mockHistory{entries: entries()}
	v := NewView(context.Background(), nil, history)
	v.SetDimensions(140, 30)

	cmd := v.Load()
	assert.Contains(t, v.View(), "Loading history...")

	v, _ = v.Update(cmd())
	assert.Equal(t, DefaultLimit, history.limit)
	assert.Equal(t, 2, v.Count())

	view := v.View()
	assert.Contains(t, view, "Answer history")
	assert.Contains(t, view, "Dental is covered for accidents only.")
	assert.Contains(t, view, "Accidental injury")
	assert.Contains(t, view, "Section 7")
}

func TestView_SelectionMovesDetail(t *testing.T) {
	v := NewView(context.Background(), nil, &mockHistory{})
	v.SetDimensions(140, 30)
	v, _ = v.Update(messages.HistoryLoaded{Entries: entries()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})

	view := v.View()
	assert.Contains(t, view, "Yes.")
	assert.NotContains(t, view, "Accidental injury")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(context.Background(), nil, &mockHistory{err: errors.New("database locked")})

	v, _ = v.Update(v.Load()())
	assert.Contains(t, v.View(), "database locked")
}

func TestView_NilHistory(t *testing.T) {
	v := NewView(context.Background(), nil, nil)

	msg := v.Load()()
	loaded, ok := msg.(messages.HistoryLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_Empty(t *testing.T) {
	v := NewView(context.Background(), nil, &mockHistory{})
	v, _ = v.Update(v.Load()())
	assert.Contains(t, v.View(), "No answers recorded yet")
}
