// Package commands implements the statement CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-insights/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "statement",
		Short:   "Normalize bank statements and summarize spending",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newInsightsCommand())

	return rootCmd
}
