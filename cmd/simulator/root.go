package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lncensor/lncensor/cli"
	"github.com/lncensor/lncensor/logging"
)

var opts cli.SimulationOptions

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simulator <GRAPH_FILE> [VERBOSE]",
	Short: "Simulate AS-level censorship of Lightning payments.",
	Long: `Simulate payments between random node pairs of a channel graph ` +
		`and count the payments that adversarial ASes on the route can ` +
		`drop. Without --amount, the amounts 100 to 10000000 sat are ` +
		`simulated in turn. Reports go to <out>/run-<seed>/.`,
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

		_, err = cli.RunSimulation(cmd.Context(), cfg, logger)

		return err
	},
}

func init() {
	opts.Bind(rootCmd.Flags())
}

// Execute runs the command and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	cli.Exit(err)
}
