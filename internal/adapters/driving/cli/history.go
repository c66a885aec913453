package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policylens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/policylens/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [entry-id]",
	Short: "Show previously answered questions",
	Long: `List recent answers from the journal, newest first.
Pass an entry ID to show one answer in full.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output entries as JSON")
	rootCmd.AddCommand(historyCmd)
}

// historyEntryJSON is the machine-readable form of a journal entry.
type historyEntryJSON struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Document  string              `json:"document"`
	Question  string              `json:"question"`
	Tier      domain.Tier         `json:"tier"`
	Record    domain.AnswerRecord `json:"record"`
	CreatedAt string              `json:"created_at"`
}

func toHistoryJSON(e *domain.JournalEntry) historyEntryJSON {
	return historyEntryJSON{
		ID:        e.ID,
		SessionID: e.SessionID,
		Document:  e.DocumentURI,
		Question:  e.Query,
		Tier:      e.Tier,
		Record:    e.Record.Normalised(),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("answer journal not configured (is journal.enabled false?)")
	}

	if len(args) == 1 {
		return showHistoryEntry(cmd, args[0])
	}

	entries, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		out := make([]historyEntryJSON, 0, len(entries))
		for i := range entries {
			out = append(out, toHistoryJSON(&entries[i]))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No answers recorded yet.")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(w, "%s  %-17s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Tier, list.Truncate(e.Query, 60))
		fmt.Fprintf(w, "    %s  %s\n", e.ID, e.DocumentURI)
	}
	return nil
}

func showHistoryEntry(cmd *cobra.Command, id string) error {
	entry, err := historyService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no journal entry with id %q", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd.OutOrStdout(), toHistoryJSON(entry))
	}

	p := newPrinter(cmd.OutOrStdout())
	p.heading(entry.Query)
	fmt.Fprintf(cmd.OutOrStdout(), "Document: %s\nAsked:    %s\n\n", entry.DocumentURI, entry.CreatedAt.Local().Format(time.RFC1123))
	p.outcome(&domain.Outcome{Query: entry.Query, Record: entry.Record, Tier: entry.Tier}, 0)
	return nil
}
