// Package history provides the journal browsing view for the TUI.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// DefaultLimit is how many entries the view loads.
const DefaultLimit = 50

// View lists journaled answers with a detail pane for the selection.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	history driving.HistoryService
	list    *list.HistoryList

	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a history view.
func NewView(ctx context.Context, s *styles.Styles, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &View{
		ctx:     ctx,
		styles:  s,
		history: history,
		list:    list.NewHistoryList(s),
		width:   80,
		height:  24,
	}
}

// Load returns a command that reads recent entries from the journal.
func (v *View) Load() tea.Cmd {
	v.loading = true
	ctx, history := v.ctx, v.history
	return func() tea.Msg {
		if history == nil {
			return messages.HistoryLoaded{Err: fmt.Errorf("history not available")}
		}
		entries, err := history.Recent(ctx, DefaultLimit)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetEntries(msg.Entries)
		}
	case tea.KeyMsg:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// View renders the history view.
func (v *View) View() string {
	header := v.styles.Title.Render("Answer history")

	switch {
	case v.loading:
		return header + "\n\n" + v.styles.Muted.Render("Loading history...")
	case v.err != nil:
		return header + "\n\n" + v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err))
	}

	listWidth := max(v.width*2/5, 30)
	v.list.SetDimensions(listWidth, max(v.height-4, 3))

	left := lipgloss.NewStyle().Width(listWidth).Render(v.list.View())
	right := lipgloss.NewStyle().
		Width(max(v.width-listWidth-3, 20)).
		PaddingLeft(2).
		Render(v.renderDetail())

	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (v *View) renderDetail() string {
	entry := v.list.SelectedEntry()
	if entry == nil {
		return ""
	}

	rec := entry.Record
	lines := []string{
		v.styles.Question.Render(entry.Query),
		v.styles.Muted.Render(entry.DocumentURI),
		"",
		rec.Answer,
	}
	if len(rec.Conditions) > 0 {
		lines = append(lines, "", v.styles.Label.Render("Conditions"))
		for _, c := range rec.Conditions {
			lines = append(lines, "  • "+c)
		}
	}
	if len(rec.SourceClauses) > 0 {
		lines = append(lines, "", v.styles.Label.Render("Source clauses"))
		for _, c := range rec.SourceClauses {
			lines = append(lines, "  • "+c)
		}
	}
	if rec.Rationale != "" {
		lines = append(lines, "", v.styles.Muted.Render(rec.Rationale))
	}
	lines = append(lines, "", v.styles.Tier(entry.Tier).Render(string(entry.Tier)))
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Count returns the number of loaded entries.
func (v *View) Count() int {
	return v.list.Count()
}
