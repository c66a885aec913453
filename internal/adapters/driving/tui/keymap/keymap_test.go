package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name string
		key  string
		want bool
		got  func() bool
	}{
		{"ctrl+c quits", "ctrl+c", true, func() bool { return Matches("ctrl+c", km.Quit) }},
		{"q does not quit", "q", false, func() bool { return Matches("q", km.Quit) }},
		{"enter asks", "enter", true, func() bool { return Matches("enter", km.Ask) }},
		{"tab switches view", "tab", true, func() bool { return Matches("tab", km.NextView) }},
		{"esc goes back", "esc", true, func() bool { return Matches("esc", km.Back) }},
		{"k moves up", "k", true, func() bool { return Matches("k", km.Up) }},
		{"j moves down", "j", true, func() bool { return Matches("j", km.Down) }},
		{"ctrl+u pages up", "ctrl+u", true, func() bool { return Matches("ctrl+u", km.PageUp) }},
		{"pgdown pages down", "pgdown", true, func() bool { return Matches("pgdown", km.PageDown) }},
		{"G jumps to bottom", "G", true, func() bool { return Matches("G", km.Bottom) }},
		{"g jumps to top", "g", true, func() bool { return Matches("g", km.Top) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got())
		})
	}
}

func TestChatHelp(t *testing.T) {
	km := DefaultKeyMap()
	help := km.ChatHelp()
	require.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
}

func TestBrowseHelp(t *testing.T) {
	km := DefaultKeyMap()
	help := km.BrowseHelp()
	require.Len(t, help, 4)
	assert.Equal(t, "back", help[3].Help().Desc)
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()
	for _, b := range append(km.ChatHelp(), km.BrowseHelp()...) {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}
