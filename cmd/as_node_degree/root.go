package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lncensor/lncensor/cli"
	"github.com/lncensor/lncensor/logging"
)

var opts = cli.NewAnalysisOptions("ln-topology-analysis.csv",
	"per-node", "write one row per node instead of one per AS")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "as_node_degree <GRAPH_FILE> [VERBOSE]",
	Short: "Write the channel degree of every AS as CSV.",
	Long: `Map every node of a channel graph to its AS and write, for each ` +
		`AS, the number of channels touching its nodes.`,
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

		return cli.RunASNodeDegree(cfg, logger)
	},
}

func init() {
	opts.Bind(rootCmd.Flags())
}

// Execute runs the command and exits.
func Execute() {
	cli.Exit(rootCmd.Execute())
}
