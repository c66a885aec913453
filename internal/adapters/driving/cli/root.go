// Package cli implements the policylens command line.
// It is a driving adapter: commands reach the core only through the
// services injected by the composition root.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/logger"
)

// version is overridden at build time with -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "policylens",
	Short: "Ask questions about insurance policy documents",
	Long: `policylens answers natural-language questions about a policy document.

Passages relevant to the question are retrieved with embeddings and an LLM
writes a structured answer citing the clauses it relied on. When an AI
provider is unavailable the answer falls back to keyword analysis of the
retrieved passages, or of the whole document, and says so.

Supported documents: PDF, DOCX, Markdown and plain text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
