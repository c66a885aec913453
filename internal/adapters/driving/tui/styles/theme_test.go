package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestDefaultStyles_RenderText(t *testing.T) {
	s := DefaultStyles()
	for name, style := range map[string]lipgloss.Style{
		"title":    s.Title,
		"question": s.Question,
		"label":    s.Label,
		"help":     s.Help,
	} {
		assert.Contains(t, style.Render("policy"), "policy", name)
	}
}

func TestStyles_Tier(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	assert.Equal(t, lipgloss.TerminalColor(theme.Success), s.Tier(domain.TierFull).GetBackground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Warning), s.Tier(domain.TierHeuristicContext).GetBackground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Warning), s.Tier(domain.TierHeuristicText).GetBackground())
}
