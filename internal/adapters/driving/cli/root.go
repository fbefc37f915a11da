// Package cli implements the papyr command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/papyr/internal/logger"
)

// version is the papyr version, overridden at build time via ldflags.
var version = "dev"

// verboseFlag enables debug logging to stderr.
var verboseFlag bool

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "papyr",
	Short: "Read and annotate papers in the terminal",
	Long: `Papyr is a terminal reader for paginated documents.

It renders a document as a continuous stack of pages with scroll
tracking, zoom, outline navigation and persistent highlights and
notes. Open a document with:

  papyr open paper.md`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
