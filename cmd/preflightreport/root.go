package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for preflightreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preflightreport",
		Short: "Render PDF reports from preflight analysis results",
		Long: `preflightreport turns the XML result of a preflight check into a two-page
A4 PDF report.

The first page summarizes the document: preflight profile, creator, inks,
page boxes, and the list of warnings and errors with their colors. The
second page shows a preview of the page with the Media, Bleed and Trim boxes
and every issue region drawn on top.

Every rendered report is recorded in a local history database so that
consecutive runs of the same document can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log output as JSON")

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
