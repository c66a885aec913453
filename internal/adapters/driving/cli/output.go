package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// answerJSON is the machine-readable form of one answered question.
type answerJSON struct {
	Question string               `json:"question"`
	Tier     domain.Tier          `json:"tier,omitempty"`
	Degraded bool                 `json:"degraded"`
	Record   *domain.AnswerRecord `json:"record,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func toAnswerJSON(query string, outcome *domain.Outcome, err error) answerJSON {
	out := answerJSON{Question: query}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	rec := outcome.Record.Normalised()
	out.Tier = outcome.Tier
	out.Degraded = outcome.Tier.IsDegraded()
	out.Record = &rec
	return out
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printer renders answers for people, styled only on a terminal.
type printer struct {
	w      io.Writer
	styled bool
	styles *styles.Styles
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:      w,
		styled: isTerminal(w),
		styles: styles.DefaultStyles(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// outcome prints one answer with its conditions, clauses and tier.
func (p *printer) outcome(o *domain.Outcome, elapsed time.Duration) {
	rec := o.Record
	fmt.Fprintln(p.w, p.render(p.styles.Label, "Answer:"), rec.Answer)

	p.list("Conditions:", rec.Conditions)
	p.list("Source clauses:", rec.SourceClauses)

	if rec.Rationale != "" {
		fmt.Fprintln(p.w, p.render(p.styles.Label, "Rationale:"), rec.Rationale)
	}

	tier := string(o.Tier)
	if p.styled {
		tier = p.styles.Tier(o.Tier).Render(tier)
	}
	line := fmt.Sprintf("%s (%s)", tier, o.Tier.Description())
	if elapsed > 0 {
		line += fmt.Sprintf(" in %s", elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(p.w, p.render(p.styles.Label, "Tier:"), line)
	if o.Tier.IsDegraded() {
		fmt.Fprintln(p.w, p.render(p.styles.Warning,
			"Note: an AI service was unavailable; this answer comes from keyword analysis."))
	}
}

func (p *printer) list(label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(p.w, p.render(p.styles.Label, label), "(none)")
		return
	}
	fmt.Fprintln(p.w, p.render(p.styles.Label, label))
	for _, item := range items {
		fmt.Fprintf(p.w, "  - %s\n", item)
	}
}

func (p *printer) heading(s string) {
	fmt.Fprintln(p.w, p.render(p.styles.Title, s))
	fmt.Fprintln(p.w, strings.Repeat("-", min(len([]rune(s)), 60)))
}

func (p *printer) failure(err error) {
	fmt.Fprintln(p.w, p.render(p.styles.Error, "Error: "+err.Error()))
}
