package domain

import (
	"encoding/json"
	"time"
)

// AnswerRecord is the canonical answer shape produced by every tier.
// All four fields are always present; empty lists serialise as [] not null.
// Field order is significant for JSON output.
type AnswerRecord struct {
	Answer        string   `json:"answer"`
	Conditions    []string `json:"conditions"`
	SourceClauses []string `json:"source_clauses"`
	Rationale     string   `json:"rationale"`
}

// Normalised returns a copy of the record with nil lists replaced by empty ones.
func (r AnswerRecord) Normalised() AnswerRecord {
	if r.Conditions == nil {
		r.Conditions = []string{}
	}
	if r.SourceClauses == nil {
		r.SourceClauses = []string{}
	}
	return r
}

// MarshalJSON encodes the record with nil lists written as empty arrays.
func (r AnswerRecord) MarshalJSON() ([]byte, error) {
	type plain AnswerRecord
	return json.Marshal(plain(r.Normalised()))
}

// Tier identifies which stage of the pipeline produced an answer.
type Tier string

// Available tiers, best first.
const (
	// TierFull is retrieval plus generative synthesis.
	TierFull Tier = "full"

	// TierHeuristicContext is the keyword heuristic over retrieved passages,
	// used when generation is unavailable.
	TierHeuristicContext Tier = "heuristic_context"

	// TierHeuristicText is the keyword heuristic over the whole document,
	// used when embeddings are unavailable.
	TierHeuristicText Tier = "heuristic_text"
)

// IsValid returns true if the tier is recognised.
func (t Tier) IsValid() bool {
	switch t {
	case TierFull, TierHeuristicContext, TierHeuristicText:
		return true
	default:
		return false
	}
}

// IsDegraded returns true for the heuristic tiers.
func (t Tier) IsDegraded() bool {
	return t == TierHeuristicContext || t == TierHeuristicText
}

// String returns the string representation.
func (t Tier) String() string {
	return string(t)
}

// Description returns a human-readable description of the tier.
func (t Tier) Description() string {
	switch t {
	case TierFull:
		return "Full (retrieval + generation)"
	case TierHeuristicContext:
		return "Heuristic over retrieved context"
	case TierHeuristicText:
		return "Heuristic over full document text"
	default:
		return unknownDescription
	}
}

// Outcome is the result of asking one question in a session.
type Outcome struct {
	// Query is the question as asked.
	Query string

	// Record is the structured answer.
	Record AnswerRecord

	// Tier is the pipeline stage that produced Record.
	Tier Tier

	// Passages are the retrieved passages used, best first.
	// Empty for the whole-document heuristic tier.
	Passages []RetrievedPassage
}

// JournalEntry is a persisted record of one answered question.
type JournalEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// SessionID groups entries asked against the same loaded document.
	SessionID string

	// DocumentURI is the path of the document that was asked about.
	DocumentURI string

	// Query is the question as asked.
	Query string

	// Tier is the pipeline stage that produced Record.
	Tier Tier

	// Record is the structured answer.
	Record AnswerRecord

	// CreatedAt is when the answer was produced.
	CreatedAt time.Time
}

// SessionState is the position of a session in the answer state machine.
type SessionState string

// Session states. Start, Chunked and Indexed are the preparation path;
// Answered, HeuristicFromContext and HeuristicFromText are the terminal
// states of one question.
const (
	StateStart                SessionState = "Start"
	StateChunked              SessionState = "Chunked"
	StateIndexed              SessionState = "Indexed"
	StateAnswered             SessionState = "Answered"
	StateHeuristicFromContext SessionState = "HeuristicFromContext"
	StateHeuristicFromText    SessionState = "HeuristicFromText"
)

// State returns the terminal session state that produces the tier.
func (t Tier) State() SessionState {
	switch t {
	case TierFull:
		return StateAnswered
	case TierHeuristicContext:
		return StateHeuristicFromContext
	case TierHeuristicText:
		return StateHeuristicFromText
	default:
		return ""
	}
}

// TierFor returns the tier produced by a terminal state.
func (s SessionState) TierFor() Tier {
	switch s {
	case StateAnswered:
		return TierFull
	case StateHeuristicFromContext:
		return TierHeuristicContext
	case StateHeuristicFromText:
		return TierHeuristicText
	default:
		return ""
	}
}
