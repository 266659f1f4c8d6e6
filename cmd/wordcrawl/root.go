package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	wclog "github.com/nao1215/wordcrawl/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wordcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordcrawl",
		Short: "Find the first web page that mentions a word",
		Long: `wordcrawl is a small breadth-first web crawler.

Starting at a seed URL it fetches one page at a time, follows the links it
finds in discovery order and stops at the first page whose visible text
contains the search term. A search visits at most a fixed number of pages
(10 by default). Finished searches are archived and can be listed with
"wordcrawl history".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON")

	cmd.AddCommand(NewSearchCmd())
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

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getPersistentBool(cmd, "verbose")
}

// getPersistentBool reads a root persistent flag. Commands built on their
// own (as in tests) do not carry the flag and read false.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// newLogger creates the secure logger for the configured format.
// Logs go to w, which is stderr for the CLI.
func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	if asJSON {
		return wclog.NewSecureJSONLogger(w, verbose)
	}
	return wclog.NewSecureLogger(w, verbose)
}
