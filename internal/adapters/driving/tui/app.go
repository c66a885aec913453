package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/views/document"
	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context passed to every question.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView     *chat.View
	historyView  *history.View
	documentView *document.View
	statusBar    *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingSession)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:       ports,
		styles:      styles.DefaultStyles(),
		keymap:      keymap.DefaultKeyMap(),
		currentView: messages.ViewChat,
	}
	a.build(context.Background())
	return a, nil
}

// build constructs the views against ctx.
func (a *App) build(ctx context.Context) {
	a.ctx = ctx
	a.chatView = chat.NewView(ctx, a.styles, a.ports.Session)
	a.documentView = document.NewView(a.styles, a.ports.Session.Document())
	if a.ports.History != nil {
		a.historyView = history.NewView(ctx, a.styles, a.ports.History)
	}
	a.statusBar = status.NewBar(a.styles, a.keymap)
	a.statusBar.SetSessionState(a.sessionState())
	if a.width > 0 {
		a.SetDimensions(a.width, a.height)
	}
}

// WithContext sets the context for the app. Cancelling it aborts the
// question in flight.
func (a *App) WithContext(ctx context.Context) *App {
	a.build(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	title := "policylens"
	if doc := a.ports.Session.Document(); doc != nil && doc.Title != "" {
		title += " - " + doc.Title
	}
	return tea.Batch(
		tea.SetWindowTitle(title),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ready = true
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		a.statusBar.SetSessionState(a.sessionState())
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, cmd
		}
		a.err = nil
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetMessage("")
		if msg.Outcome != nil {
			a.statusBar.SetTier(msg.Outcome.Tier)
		}
		return a, cmd

	case messages.HistoryLoaded:
		if a.historyView != nil {
			a.historyView, cmd = a.historyView.Update(msg)
		}
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil
	}

	// Remaining messages (spinner ticks, cursor blink) belong to the chat view.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.NextView):
		return a, a.switchTo(a.nextView())
	case keymap.Matches(k, a.keymap.Back) && a.currentView != messages.ViewChat:
		return a, a.switchTo(messages.ViewChat)
	}

	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
		if a.chatView.Busy() {
			a.statusBar.SetState(status.StateThinking)
		}
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewDocument:
		a.documentView, cmd = a.documentView.Update(msg)
	}
	return a, cmd
}

// nextView returns the view after the current one, skipping history when
// no journal is wired.
func (a *App) nextView() messages.ViewType {
	switch a.currentView {
	case messages.ViewChat:
		if a.historyView != nil {
			return messages.ViewHistory
		}
		return messages.ViewDocument
	case messages.ViewHistory:
		return messages.ViewDocument
	default:
		return messages.ViewChat
	}
}

// switchTo activates view and returns its start-up command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHistory && a.historyView == nil {
		return nil
	}
	a.currentView = view

	switch view {
	case messages.ViewChat:
		if a.chatView.Busy() {
			a.statusBar.SetState(status.StateThinking)
		} else if a.err == nil {
			a.statusBar.SetState(status.StateReady)
		}
		return a.chatView.Focus()
	case messages.ViewHistory:
		a.chatView.Blur()
		a.statusBar.SetState(status.StateBrowsing)
		return a.historyView.Load()
	case messages.ViewDocument:
		a.chatView.Blur()
		a.statusBar.SetState(status.StateBrowsing)
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var body string
	switch a.currentView {
	case messages.ViewHistory:
		body = a.historyView.View()
	case messages.ViewDocument:
		body = a.documentView.View()
	default:
		body = a.chatView.View()
	}

	bodyHeight := max(a.height-1, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	contentHeight := max(height-1, 1)
	a.chatView.SetDimensions(width, contentHeight)
	a.documentView.SetDimensions(width, contentHeight)
	if a.historyView != nil {
		a.historyView.SetDimensions(width, contentHeight)
	}
	a.statusBar.SetWidth(width)
}

// sessionState prefers the terminal state of the last answer over the
// preparation state.
func (a *App) sessionState() domain.SessionState {
	if last := a.ports.Session.LastState(); last != "" {
		return last
	}
	return a.ports.Session.State()
}
