package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui"
)

var chatStrict bool

var chatCmd = &cobra.Command{
	Use:   "chat <file>",
	Short: "Ask questions interactively in the terminal UI",
	Long: `Open a policy document and ask questions about it in an interactive
terminal UI. The document is indexed once, on the first question, and
reused for the rest of the session.

Controls:
  Enter      - Ask the typed question
  Tab        - Switch between chat, history and document views
  PgUp/PgDn  - Scroll
  Esc        - Back to chat
  Ctrl+C     - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatStrict, "strict", false, "fail when a provider credential is missing")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, err := openRuntime(cmd, RuntimeOptions{Strict: chatStrict})
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.watch(ctx)

	session, err := rt.Answers.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	app, err := tui.NewApp(&tui.Ports{Session: session, History: historyService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
