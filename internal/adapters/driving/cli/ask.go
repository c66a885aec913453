package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

var (
	askJSON    bool
	askTopK    int
	askStrict  bool
	askSamples bool
)

// sampleQuestions exercise the common coverage checks against a policy.
var sampleQuestions = []string{
	"Does this policy cover knee surgery, and what are the conditions?",
	"What medical procedures are covered under this policy?",
	"Are there any exclusions or limitations mentioned?",
	"What is the coverage amount for surgical procedures?",
	"Does this policy cover pre-existing conditions?",
}

var askCmd = &cobra.Command{
	Use:   "ask <file> [question]",
	Short: "Answer a question about a policy document",
	Long: `Answer one question about a policy document.

The answer lists any conditions that apply and the clauses it is based on.
The tier line tells you how it was produced:
  full               - retrieval and LLM synthesis
  heuristic_context  - keyword analysis of retrieved passages (LLM unavailable)
  heuristic_text     - keyword analysis of the whole document (embeddings unavailable)

Use --samples instead of a question to run a set of standard coverage
questions against the document.

Examples:
  policylens ask policy.pdf "Is knee surgery covered?"
  policylens ask policy.docx "What is the waiting period?" --json
  policylens ask policy.pdf --samples`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "passages to retrieve (0 = configured value)")
	askCmd.Flags().BoolVar(&askStrict, "strict", false, "fail when a provider credential is missing")
	askCmd.Flags().BoolVar(&askSamples, "samples", false, "run the standard coverage questions")
	rootCmd.AddCommand(askCmd)
}

func askQuestions(args []string) ([]string, error) {
	switch {
	case askSamples && len(args) == 2:
		return nil, errors.New("--samples cannot be combined with a question")
	case askSamples:
		return sampleQuestions, nil
	case len(args) < 2:
		return nil, errors.New("a question is required (or use --samples)")
	}
	return []string{args[1]}, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	questions, err := askQuestions(args)
	if err != nil {
		return err
	}
	if askTopK < 0 {
		return fmt.Errorf("--top-k must not be negative: %w", domain.ErrInvalidInput)
	}

	rt, err := openRuntime(cmd, RuntimeOptions{Strict: askStrict, TopK: askTopK})
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	session, err := rt.Answers.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	if !askSamples {
		start := time.Now()
		outcome, err := session.Ask(ctx, questions[0])
		if err != nil {
			return fmt.Errorf("answering question: %w", err)
		}
		if askJSON {
			return writeJSON(cmd.OutOrStdout(), toAnswerJSON(questions[0], outcome, nil))
		}
		newPrinter(cmd.OutOrStdout()).outcome(outcome, time.Since(start))
		return nil
	}

	return runSamples(cmd, session, questions)
}

// runSamples asks every question in turn, reporting failures without stopping.
func runSamples(cmd *cobra.Command, session driving.Session, questions []string) error {
	ctx := cmd.Context()
	out := newPrinter(cmd.OutOrStdout())
	results := make([]answerJSON, 0, len(questions))
	failed := 0

	for i, q := range questions {
		start := time.Now()
		outcome, err := session.Ask(ctx, q)
		if err != nil {
			failed++
		}
		if askJSON {
			results = append(results, toAnswerJSON(q, outcome, err))
			continue
		}

		out.heading(fmt.Sprintf("Query %d: %s", i+1, q))
		if err != nil {
			out.failure(err)
		} else {
			out.outcome(outcome, time.Since(start))
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if askJSON {
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed", failed, len(questions))
	}
	return nil
}
