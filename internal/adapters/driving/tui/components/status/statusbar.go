// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateBrowsing State = "browsing"
)

// Bar displays session status, the last answer tier and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	tier    domain.Tier
	session domain.SessionState
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var parts []string

	switch s.state {
	case StateThinking:
		parts = append(parts, s.styles.Muted.Render("Thinking..."))
	case StateError:
		if s.message != "" {
			parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message)))
		} else {
			parts = append(parts, s.styles.Error.Render("Error"))
		}
	case StateReady, StateBrowsing:
		if s.message != "" {
			parts = append(parts, s.styles.Normal.Render(s.message))
		} else {
			parts = append(parts, s.styles.Muted.Render("Ready"))
		}
	}

	if s.session != "" {
		parts = append(parts, s.styles.Muted.Render(string(s.session)))
	}
	if s.tier != "" {
		parts = append(parts, s.styles.Tier(s.tier).Render(string(s.tier)))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateBrowsing {
		bindings = s.keymap.BrowseHelp()
	} else {
		bindings = s.keymap.ChatHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetTier records the tier of the latest answer.
func (s *Bar) SetTier(tier domain.Tier) {
	s.tier = tier
}

// Tier returns the tier of the latest answer.
func (s *Bar) Tier() domain.Tier {
	return s.tier
}

// SetSessionState records where the session is in its lifecycle.
func (s *Bar) SetSessionState(state domain.SessionState) {
	s.session = state
}

// SessionState returns the recorded session state.
func (s *Bar) SessionState() domain.SessionState {
	return s.session
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to its default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.tier = ""
	s.session = ""
}
