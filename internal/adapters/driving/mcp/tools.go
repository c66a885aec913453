package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// defaultHistoryLimit is used when recent_answers is called without a limit.
const defaultHistoryLimit = 10

// AskInput is the input schema for the ask_policy tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a natural-language question about the loaded policy document"`
}

// AskOutput is the output schema for the ask_policy tool.
type AskOutput struct {
	Answer        string          `json:"answer"`
	Conditions    []string        `json:"conditions"`
	SourceClauses []string        `json:"source_clauses"`
	Rationale     string          `json:"rationale"`
	Tier          string          `json:"tier"`
	Degraded      bool            `json:"degraded"`
	Passages      []PassageOutput `json:"passages,omitempty"`
}

// PassageOutput is one retrieved passage that informed the answer.
type PassageOutput struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// HistoryInput is the input schema for the recent_answers tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of answers to return (default 10)"`
}

// HistoryOutput is the output schema for the recent_answers tool.
type HistoryOutput struct {
	Entries []HistoryEntryOutput `json:"entries"`
	Count   int                  `json:"count"`
}

// HistoryEntryOutput is one journal entry.
type HistoryEntryOutput struct {
	ID        string              `json:"id"`
	Query     string              `json:"query"`
	Document  string              `json:"document"`
	Tier      string              `json:"tier"`
	Record    domain.AnswerRecord `json:"record"`
	CreatedAt string              `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	title := s.ports.Session.Document().Title
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "ask_policy",
		Description: "Answer a question about the policy document " + quote(title) +
			". Returns the answer, its conditions, the supporting clauses and a rationale.",
	}, s.handleAsk)

	if s.ports.History != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "recent_answers",
			Description: "List recently answered policy questions, newest first",
		}, s.handleHistory)
	}
}

// handleAsk answers one question through the session's tier chain.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	outcome, err := s.ports.Session.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	record := outcome.Record.Normalised()
	output := AskOutput{
		Answer:        record.Answer,
		Conditions:    record.Conditions,
		SourceClauses: record.SourceClauses,
		Rationale:     record.Rationale,
		Tier:          outcome.Tier.String(),
		Degraded:      outcome.Tier.IsDegraded(),
		Passages:      make([]PassageOutput, len(outcome.Passages)),
	}
	for i, p := range outcome.Passages {
		output.Passages[i] = PassageOutput{
			Position: p.Chunk.Position,
			Score:    p.Score,
			Content:  p.Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleHistory lists recent journal entries.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.ports.History.Recent(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	output := HistoryOutput{
		Entries: make([]HistoryEntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i := range entries {
		output.Entries[i] = toHistoryEntry(&entries[i])
	}
	return nil, output, nil
}

func toHistoryEntry(e *domain.JournalEntry) HistoryEntryOutput {
	return HistoryEntryOutput{
		ID:        e.ID,
		Query:     e.Query,
		Document:  e.DocumentURI,
		Tier:      e.Tier.String(),
		Record:    e.Record.Normalised(),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func quote(title string) string {
	if title == "" {
		return "currently loaded"
	}
	return "\"" + title + "\""
}
