package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ijcnam.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ijcnam",
		Short: "Crawl and clean the CNAM sick-leave allowance open data",
		Long: `ijcnam downloads the daily sick-leave allowance (IJ) spreadsheets published
by the Assurance Maladie and reshapes them into tidy CSV files.

Data lives under <root>/data/ij_cnam: spreadsheets in raw/, CSV files in
clean/ and the SQLite catalog in ijcnam.db.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("root", "r", "",
		"Project root holding data/ij_cnam (default: current directory)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .ijcnam in current directory, XDG config or home)")
	cmd.PersistentFlags().Bool("no-db", false,
		"Do not record downloads, observations and runs in the SQLite catalog")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewQueryCmd())
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
