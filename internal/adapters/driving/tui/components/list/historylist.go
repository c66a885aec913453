// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// HistoryList displays journaled answers in a navigable list.
type HistoryList struct {
	entries  []domain.JournalEntry
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewHistoryList creates a new history list component.
func NewHistoryList(s *styles.Styles) *HistoryList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &HistoryList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (h *HistoryList) Update(msg tea.Msg) (*HistoryList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			h.MoveUp()
		case "down", "j":
			h.MoveDown()
		case "home", "g":
			h.selected = 0
		case "end", "G":
			if len(h.entries) > 0 {
				h.selected = len(h.entries) - 1
			}
		}
	}
	return h, nil
}

// View renders the history list.
func (h *HistoryList) View() string {
	if len(h.entries) == 0 {
		return h.styles.Muted.Render("No answers recorded yet")
	}

	lines := make([]string, 0, len(h.entries)+2)
	lines = append(lines, h.styles.Subtitle.Render(fmt.Sprintf("History (%d)", len(h.entries))), "")

	// Each entry takes one line.
	visible := max(h.height-2, 1)
	start := 0
	if h.selected >= visible {
		start = h.selected - visible + 1
	}
	end := min(start+visible, len(h.entries))

	for i := start; i < end; i++ {
		lines = append(lines, h.renderEntry(i, &h.entries[i]))
	}
	return strings.Join(lines, "\n")
}

func (h *HistoryList) renderEntry(index int, entry *domain.JournalEntry) string {
	indicator := "  "
	if index == h.selected {
		indicator = "> "
	}

	stamp := entry.CreatedAt.Local().Format("01-02 15:04")
	tier := string(entry.Tier)
	query := Truncate(entry.Query, max(h.width-len(stamp)-len(tier)-8, 10))

	if index == h.selected {
		return h.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, stamp, query)) +
			" " + h.styles.Tier(entry.Tier).Render(tier)
	}
	return h.styles.Normal.Render(fmt.Sprintf("%s%s  %s", indicator, stamp, query)) +
		" " + h.styles.Muted.Render(tier)
}

// SetEntries replaces the listed entries and resets the selection.
func (h *HistoryList) SetEntries(entries []domain.JournalEntry) {
	h.entries = entries
	h.selected = 0
}

// Entries returns the listed entries.
func (h *HistoryList) Entries() []domain.JournalEntry {
	return h.entries
}

// Selected returns the index of the selected entry.
func (h *HistoryList) Selected() int {
	return h.selected
}

// SelectedEntry returns the selected entry, or nil if the list is empty.
func (h *HistoryList) SelectedEntry() *domain.JournalEntry {
	if h.selected < 0 || h.selected >= len(h.entries) {
		return nil
	}
	return &h.entries[h.selected]
}

// MoveUp moves selection up.
func (h *HistoryList) MoveUp() {
	if h.selected > 0 {
		h.selected--
	}
}

// MoveDown moves selection down.
func (h *HistoryList) MoveDown() {
	if h.selected < len(h.entries)-1 {
		h.selected++
	}
}

// SetDimensions sets the component dimensions.
func (h *HistoryList) SetDimensions(width, height int) {
	h.width = width
	h.height = height
}

// Count returns the number of entries.
func (h *HistoryList) Count() int {
	return len(h.entries)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
