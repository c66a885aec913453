// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// reservedLines covers the header, input box and status bar.
const reservedLines = 7

// turn is one question and its result.
type turn struct {
	query   string
	outcome *domain.Outcome
	err     error
	elapsed time.Duration
}

// View is the chat transcript with a question input.
type View struct {
	ctx     context.Context
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	session driving.Session

	input    *input.QuestionInput
	viewport viewport.Model
	spinner  spinner.Model

	turns  []turn
	busy   bool
	width  int
	height int
}

// NewView creates a chat view over session.
func NewView(ctx context.Context, s *styles.Styles, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Subtitle

	v := &View{
		ctx:      ctx,
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		session:  session,
		input:    input.NewQuestionInput(s),
		viewport: viewport.New(80, 16),
		spinner:  sp,
		width:    80,
		height:   24,
	}
	v.refresh()
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.busy = false
		v.turns = append(v.turns, turn{
			query:   msg.Query,
			outcome: msg.Outcome,
			err:     msg.Err,
			elapsed: msg.Elapsed,
		})
		v.refresh()
		v.viewport.GotoBottom()
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Ask):
		if v.busy {
			return v, nil
		}
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		v.busy = true
		v.input.Reset()
		v.refresh()
		return v, tea.Batch(v.ask(query), v.spinner.Tick)

	case keymap.Matches(msg.String(), v.keymap.PageUp),
		keymap.Matches(msg.String(), v.keymap.PageDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that answers query off the update loop.
func (v *View) ask(query string) tea.Cmd {
	ctx, session := v.ctx, v.session
	return func() tea.Msg {
		start := time.Now()
		outcome, err := session.Ask(ctx, query)
		return messages.AnswerReceived{
			Query:   query,
			Outcome: outcome,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	var b strings.Builder

	if len(v.turns) == 0 && !v.busy {
		b.WriteString(v.styles.Muted.Render("Ask anything about the policy. Answers cite the clauses they rely on."))
	}
	for i := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.renderTurn(&v.turns[i]))
	}
	if v.busy {
		if len(v.turns) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.spinner.View() + v.styles.Muted.Render(" Reading the policy..."))
	}

	v.viewport.SetContent(b.String())
}

func (v *View) renderTurn(t *turn) string {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	lines := []string{v.styles.Question.Render("Q: ") + wrap.Render(t.query)}

	if t.err != nil {
		lines = append(lines, v.styles.Error.Render(wrap.Render("Error: "+t.err.Error())))
		return strings.Join(lines, "\n")
	}
	if t.outcome == nil {
		return strings.Join(lines, "\n")
	}

	rec := t.outcome.Record
	lines = append(lines, wrap.Render(rec.Answer))

	if len(rec.Conditions) > 0 {
		lines = append(lines, v.styles.Label.Render("Conditions"))
		for _, c := range rec.Conditions {
			lines = append(lines, wrap.Render("  • "+c))
		}
	}
	if len(rec.SourceClauses) > 0 {
		lines = append(lines, v.styles.Label.Render("Source clauses"))
		for _, c := range rec.SourceClauses {
			lines = append(lines, wrap.Render("  • "+c))
		}
	}
	if rec.Rationale != "" {
		lines = append(lines, v.styles.Muted.Render(wrap.Render(rec.Rationale)))
	}

	footer := v.styles.Tier(t.outcome.Tier).Render(string(t.outcome.Tier)) + " " +
		v.styles.Muted.Render(fmt.Sprintf("%s · %s", t.outcome.Tier.Description(), t.elapsed.Round(time.Millisecond)))
	lines = append(lines, footer)

	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	title := "Policy"
	if doc := v.session.Document(); doc != nil && doc.Title != "" {
		title = doc.Title
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render(title),
		v.viewport.View(),
		v.input.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 3)
	v.input.SetWidth(width)
	v.refresh()
}

// Busy reports whether a question is being answered.
func (v *View) Busy() bool {
	return v.busy
}

// Turns returns the number of answered questions.
func (v *View) Turns() int {
	return len(v.turns)
}

// Focus focuses the question input.
func (v *View) Focus() tea.Cmd {
	return v.input.Focus()
}

// Blur removes focus from the question input.
func (v *View) Blur() {
	v.input.Blur()
}
