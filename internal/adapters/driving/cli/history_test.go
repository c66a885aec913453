package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

func withHistory(t *testing.T, svc *mockHistoryService) {
	t.Helper()
	old := historyService
	historyService = svc
	t.Cleanup(func() { historyService = old })
}

func journalEntries() []domain.JournalEntry {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.JournalEntry{
		{
			ID:          "entry-2",
			SessionID:   "s1",
			DocumentURI: "/tmp/policy.pdf",
			Query:       "Is dental covered?",
			Tier:        domain.TierHeuristicContext,
			Record:      domain.AnswerRecord{Answer: "Accidental dental only.", Conditions: []string{"Accident"}},
			CreatedAt:   at.Add(time.Minute),
		},
		{
			ID:          "entry-1",
			SessionID:   "s1",
			DocumentURI: "/tmp/policy.pdf",
			Query:       kneeQuestion,
			Tier:        domain.TierFull,
			Record:      kneeOutcome().Record,
			CreatedAt:   at,
		},
	}
}

func TestHistoryCmd_List(t *testing.T) {
	withHistory(t, &mockHistoryService{entries: journalEntries()})

	stdout, _, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "heuristic_context")
	assert.Contains(t, stdout, "Is dental covered?")
	assert.Contains(t, stdout, "entry-1  /tmp/policy.pdf")
}

func TestHistoryCmd_Limit(t *testing.T) {
	withHistory(t, &mockHistoryService{entries: journalEntries()})

	stdout, _, err := executeCommand(t, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "entry-2")
	assert.NotContains(t, stdout, "entry-1")
}

func TestHistoryCmd_JSON(t *testing.T) {
	withHistory(t, &mockHistoryService{entries: journalEntries()})

	stdout, _, err := executeCommand(t, "history", "--json")
	require.NoError(t, err)

	var got []historyEntryJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "entry-2", got[0].ID)
	assert.Equal(t, "2026-03-01T10:01:00Z", got[0].CreatedAt)
	assert.Equal(t, []string{"Accident"}, got[0].Record.Conditions)
}

func TestHistoryCmd_ShowEntry(t *testing.T) {
	withHistory(t, &mockHistoryService{entries: journalEntries()})

	stdout, _, err := executeCommand(t, "history", "entry-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, kneeQuestion)
	assert.Contains(t, stdout, "Document: /tmp/policy.pdf")
	assert.Contains(t, stdout, "Answer: Yes, knee surgery is covered.")
	assert.Contains(t, stdout, "Tier: full")
}

func TestHistoryCmd_Empty(t *testing.T) {
	withHistory(t, &mockHistoryService{})

	stdout, _, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No answers recorded yet.")
}

func TestHistoryCmd_Errors(t *testing.T) {
	withHistory(t, &mockHistoryService{entries: journalEntries()})
	_, _, err := executeCommand(t, "history", "nope")
	assert.EqualError(t, err, `no journal entry with id "nope"`)

	withHistory(t, &mockHistoryService{err: errors.New("database is locked")})
	_, _, err = executeCommand(t, "history")
	assert.ErrorContains(t, err, "database is locked")
}

func TestHistoryCmd_NotConfigured(t *testing.T) {
	old := historyService
	historyService = nil
	t.Cleanup(func() { historyService = old })

	_, _, err := executeCommand(t, "history")
	assert.ErrorContains(t, err, "answer journal not configured")
}
