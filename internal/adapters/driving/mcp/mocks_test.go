package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// mockSession is a mock implementation of driving.Session.
type mockSession struct {
	doc      *domain.Document
	outcome  *domain.Outcome
	err      error
	lastAsk  string
	askCalls int
}

func newMockSession() *mockSession {
	return &mockSession{doc: &domain.Document{
		ID:      "doc-1",
		URI:     "/policies/health.pdf",
		Title:   "Group Health Policy",
		Content: "Section 3. Knee replacement surgery is covered subject to prior approval.",
	}}
}

func (m *mockSession) ID() string { return "session-1" }

func (m *mockSession) Document() *domain.Document { return m.doc }

func (m *mockSession) State() domain.SessionState { return domain.StateStart }

func (m *mockSession) LastState() domain.SessionState { return "" }

func (m *mockSession) Ask(_ context.Context, query string) (*domain.Outcome, error) {
	m.askCalls++
	m.lastAsk = query
	return m.outcome, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	entries   []domain.JournalEntry
	err       error
	lastLimit int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.JournalEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func sampleEntry() domain.JournalEntry {
	return domain.JournalEntry{
		ID:          "entry-1",
		SessionID:   "session-1",
		DocumentURI: "/policies/health.pdf",
		Query:       "Is knee surgery covered?",
		Tier:        domain.TierFull,
		Record: domain.AnswerRecord{
			Answer:        "Yes, knee surgery is covered.",
			Conditions:    []string{"Requires prior approval"},
			SourceClauses: []string{"Section 3"},
			Rationale:     "Section 3 lists knee replacement.",
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}
