package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "ledgerbook",
		Short:   "Double-entry bookkeeping from the command line",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.dir, "dir", ".", "book directory")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newChartCommand(a),
		newOpeningCommand(a),
		newPostCommand(a),
		newPostCompoundCommand(a),
		newOperationCommand(a),
		newImportCommand(a),
		newCloseCommand(a),
		newReportCommand(a),
		newBalancesCommand(a),
		newAccountCommand(a),
		newLogCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}
