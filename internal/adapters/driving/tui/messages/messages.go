// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question and answer transcript.
	ViewChat ViewType = iota
	// ViewHistory lists journaled answers.
	ViewHistory
	// ViewDocument shows the extracted policy text.
	ViewDocument
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewHistory:
		return "history"
	case ViewDocument:
		return "document"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived carries the result of one question.
// Exactly one of Outcome and Err is set.
type AnswerReceived struct {
	Query   string
	Outcome *domain.Outcome
	Err     error
	Elapsed time.Duration
}

// HistoryLoaded carries journal entries, newest first.
type HistoryLoaded struct {
	Entries []domain.JournalEntry
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
