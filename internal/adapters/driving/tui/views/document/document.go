// Package document provides the policy text view for the TUI.
package document

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// View shows the extracted text of the session document.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	document     *domain.Document
	lines        []string
	scrollOffset int
	width        int
	height       int
}

// NewView creates a document view for doc.
func NewView(s *styles.Styles, doc *domain.Document) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		document: doc,
		width:    80,
		height:   24,
	}
	v.wrapContent()
	return v
}

// Update handles messages for the document view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) {
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.scrollOffset = max(v.scrollOffset-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case keymap.Matches(k, v.keymap.PageUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case keymap.Matches(k, v.keymap.PageDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case keymap.Matches(k, v.keymap.Top):
		v.scrollOffset = 0
	case keymap.Matches(k, v.keymap.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	}
}

// wrapContent splits the content into display lines no wider than the view.
func (v *View) wrapContent() {
	v.lines = nil
	if v.document == nil || v.document.Content == "" {
		return
	}

	contentWidth := max(v.width-4, 20)
	for _, line := range strings.Split(v.document.Content, "\n") {
		runes := []rune(line)
		for len(runes) > contentWidth {
			v.lines = append(v.lines, string(runes[:contentWidth]))
			runes = runes[contentWidth:]
		}
		v.lines = append(v.lines, string(runes))
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// visibleLines reserves room for the title, separator, position and status bar.
func (v *View) visibleLines() int {
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil && v.document.Title != "" {
		title = v.document.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No text could be extracted from this document)"))
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.styles.Normal.Render(v.lines[i]))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		percentage := 0
		if m := v.maxScrollOffset(); m > 0 {
			percentage = v.scrollOffset * 100 / m
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}

	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Offset returns the first visible line.
func (v *View) Offset() int {
	return v.scrollOffset
}

// LineCount returns the number of wrapped lines.
func (v *View) LineCount() int {
	return len(v.lines)
}
