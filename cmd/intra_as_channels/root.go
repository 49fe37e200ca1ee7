package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lncensor/lncensor/cli"
	"github.com/lncensor/lncensor/logging"
)

var opts = cli.NewAnalysisOptions("ln-intra-channels.csv",
	"ratios", "write the intra-AS channel ratio of every node")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intra_as_channels <GRAPH_FILE> [VERBOSE]",
	Short: "Write intra- and inter-AS channel counts as CSV.",
	Long: `Map every node of a channel graph to its AS and count, for each ` +
		`AS, the channels with both ends inside it and the channels ` +
		`leaving it.`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := opts.Config(cmd.Flags(), args)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel(), os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		return cli.RunIntraASChannels(cfg, logger)
	},
}

func init() {
	opts.Bind(rootCmd.Flags())
}

// Execute runs the command and exits.
func Execute() {
	cli.Exit(rootCmd.Execute())
}
