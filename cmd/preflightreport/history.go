package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/printops/preflightreport/internal/config"
	"github.com/printops/preflightreport/internal/database"
	"github.com/printops/preflightreport/internal/report"
)

// DefaultHistoryLimit is the number of runs listed by default.
const DefaultHistoryLimit = 20

// historyOptions selects what the history command prints.
type historyOptions struct {
	document  string
	runID     string
	documents bool
	limit     int
	json      bool
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "Show previously rendered reports",
		Long: `History lists the reports recorded by 'preflightreport render'.

Without arguments the most recent runs of all documents are listed. With a
document name the latest two runs of that document are compared and the
warnings and errors that appeared or disappeared are shown.

Examples:
  # List the latest runs
  preflightreport history

  # Compare the last two runs of a document
  preflightreport history flyer.pdf

  # Show a single run with all its messages
  preflightreport history --run 0f8c2d9e-...

  # List every document in the history
  preflightreport history --documents

  # Output as JSON
  preflightreport history --json flyer.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().IntP("limit", "n", DefaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().StringP("run", "r", "",
		"Show the run with the given ID")
	cmd.Flags().BoolP("documents", "D", false,
		"List the documents recorded in the history")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var opts historyOptions
	var err error

	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if opts.runID, err = cmd.Flags().GetString("run"); err != nil {
		return err
	}
	if opts.documents, err = cmd.Flags().GetBool("documents"); err != nil {
		return err
	}
	if len(args) > 0 {
		opts.document = args[0]
	}
	if opts.runID != "" && opts.document != "" {
		return errors.New("--run cannot be combined with a document name")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), cmd.OutOrStdout(), db, opts)
}

// runHistory prints the part of the history selected by opts to w.
func runHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, opts historyOptions) error {
	switch {
	case opts.documents:
		return listDocuments(ctx, w, db, opts.json)
	case opts.runID != "":
		return showRun(ctx, w, db, opts.runID, opts.json)
	case opts.document != "":
		return compareLatest(ctx, w, db, opts.document, opts.json)
	default:
		return listRuns(ctx, w, db, opts.limit, opts.json)
	}
}

// listDocuments prints the distinct documents in the history.
func listDocuments(ctx context.Context, w io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	documents, err := db.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		if documents == nil {
			documents = []string{}
		}
		return writeJSON(w, documents)
	}

	if len(documents) == 0 {
		fmt.Fprintln(w, "No reports recorded yet.")
		fmt.Fprintln(w, "\nUse 'preflightreport render <report.xml>' to render a report.")
		return nil
	}

	fmt.Fprintf(w, "Documents (%d):\n\n", len(documents))
	for _, document := range documents {
		fmt.Fprintf(w, "  • %s\n", document)
	}
	fmt.Fprintln(w, "\nUse 'preflightreport history <document>' to compare its latest runs.")
	return nil
}

// listRuns prints the most recent runs as a table.
func listRuns(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if runs == nil {
			runs = []*database.Run{}
		}
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No reports recorded yet.")
		fmt.Fprintln(w, "\nUse 'preflightreport render <report.xml>' to render a report.")
		return nil
	}

	fmt.Fprintf(w, "Recent runs (%d):\n\n", len(runs))
	fmt.Fprintf(w, "  %-36s  %-19s  %-30s  %8s  %6s\n", "ID", "Generated", "Document", "Warnings", "Errors")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 109))
	for _, run := range runs {
		fmt.Fprintf(w, "  %-36s  %-19s  %-30s  %8d  %6d\n",
			run.ID,
			run.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(run.DocumentName, 30),
			run.WarningCount,
			run.ErrorCount,
		)
	}
	return nil
}

// showRun prints a single run with its issue messages.
func showRun(ctx context.Context, w io.Writer, db *database.HistoryDB, id string, jsonOutput bool) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(w, run)
	}

	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  Document:  %s\n", run.DocumentName)
	fmt.Fprintf(w, "  Profile:   %s\n", run.Profile)
	fmt.Fprintf(w, "  Generated: %s\n", run.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
	if run.OutputPath != "" {
		fmt.Fprintf(w, "  Report:    %s\n", run.OutputPath)
	}
	printMessages(w, "Warnings", run.Warnings, color.New(color.FgYellow).SprintFunc())
	printMessages(w, "Errors", run.Errors, color.New(color.FgRed).SprintFunc())
	return nil
}

// compareLatest compares the latest two runs of document.
func compareLatest(ctx context.Context, w io.Writer, db *database.HistoryDB, document string, jsonOutput bool) error {
	runs, err := db.LatestRuns(ctx, document, 2)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no history found for %s", document)
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	comparison := database.CompareRuns(runs[1], runs[0])
	if jsonOutput {
		return writeJSON(w, comparison)
	}

	fmt.Fprintf(w, "Comparison for %s\n", document)
	fmt.Fprintf(w, "  Previous: %s  %s  (%d warning(s), %d error(s))\n",
		shortID(comparison.Previous.ID),
		comparison.Previous.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
		comparison.Previous.WarningCount, comparison.Previous.ErrorCount)
	fmt.Fprintf(w, "  Current:  %s  %s  (%d warning(s), %d error(s))\n",
		shortID(comparison.Current.ID),
		comparison.Current.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
		comparison.Current.WarningCount, comparison.Current.ErrorCount)
	if comparison.SameInput {
		fmt.Fprintln(w, "  Both runs were rendered from the same preflight result.")
	}

	if !comparison.HasChanges() {
		fmt.Fprintln(w, "\nNo changes in warnings or errors.")
		return nil
	}

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	printMessages(w, "New errors", comparison.NewErrors, red)
	printMessages(w, "New warnings", comparison.NewWarnings, red)
	printMessages(w, "Resolved errors", comparison.ResolvedErrors, green)
	printMessages(w, "Resolved warnings", comparison.ResolvedWarnings, green)
	return nil
}

// printMessages prints a titled list of messages, or nothing when empty.
func printMessages(w io.Writer, title string, messages []string, paint func(a ...any) string) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(messages))
	for _, msg := range messages {
		fmt.Fprintf(w, "  %s %s\n", paint("•"), msg)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	_, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteValue(v)
	return err
}

// shortID returns the first eight characters of a run ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to maxLen runes, ending with "...".
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
