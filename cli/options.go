// Package cli wires the stages of the command line tools together.
package cli

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/config"
	"github.com/lncensor/lncensor/simulation"
	"github.com/lncensor/lncensor/topology"
)

type commonOptions struct {
	configFile string
	log        string
	out        string
	source     topology.Source
	asnDB      string
}

func (o *commonOptions) bind(fs *pflag.FlagSet, d config.Common) {
	o.log = d.Log
	o.out = d.Out
	o.source = topology.Source(d.GraphSource)
	o.asnDB = d.ASNDatabase

	fs.StringVar(&o.configFile, "config", "", "YAML file with default settings")
	fs.StringVar(&o.log, "log", o.log,
		"log level: off, error, warn, info, debug, or trace")
	fs.StringVar(&o.out, "out", o.out, "output location")
	fs.Var(&o.source, "graph-source", "graph format: lnd or lnr")
	fs.StringVar(&o.asnDB, "asn-db", o.asnDB,
		"AS dataset, a MaxMind .mmdb file or a prefix table (default $"+
			config.EnvASNDatabase+")")
}

// load fills c from the config file, the environment, the flags that were
// set, and the positional arguments, in that order.
func (o *commonOptions) load(
	fs *pflag.FlagSet,
	args []string,
	c *config.Common,
	file any,
) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	if o.configFile != "" {
		if err := config.LoadFile(o.configFile, file); err != nil {
			return err
		}
	}

	c.ApplyEnv()

	if fs.Changed("log") {
		c.Log = o.log
	}

	if fs.Changed("out") {
		c.Out = o.out
	}

	if fs.Changed("graph-source") {
		c.GraphSource = o.source.String()
	}

	if fs.Changed("asn-db") {
		c.ASNDatabase = o.asnDB
	}

	return positional(args, c)
}

// positional reads <GRAPH_FILE> [VERBOSE].
func positional(args []string, c *config.Common) error {
	if len(args) > 0 {
		c.GraphFile = args[0]
	}

	if len(args) > 1 {
		verbose, err := strconv.ParseBool(args[1])
		if err != nil {
			return errors.Errorf("VERBOSE must be true or false, got %q", args[1])
		}

		c.Verbose = verbose
	}

	return nil
}

// SimulationOptions holds the simulator flags.
type SimulationOptions struct {
	commonOptions

	amount       int64
	seed         uint64
	payments     int
	numAS        int
	asStrategy   adversary.Strategy
	drop         simulation.DropStrategy
	workers      int
	maxHops      int
	routeTimeout time.Duration
	record       string
	monitor      bool
	monitorPort  int
	monitorOpen  bool
}

// Bind registers the simulator flags.
func (o *SimulationOptions) Bind(fs *pflag.FlagSet) {
	d := config.DefaultSimulation()
	o.bind(fs, d.Common)

	strategy, _ := adversary.ParseStrategy(d.ASStrategy)
	o.asStrategy = strategy

	drop, _ := simulation.ParseDropStrategy(d.DropStrategy)
	o.drop = drop

	fs.Int64Var(&o.amount, "amount", 0,
		"payment amount in satoshi (default: sweep 100 to 10000000)")
	fs.Uint64Var(&o.seed, "run", d.Seed, "seed of the run")
	fs.IntVar(&o.payments, "payments", d.Payments,
		"number of payments per amount")
	fs.IntVar(&o.numAS, "num-as", d.NumAS, "number of adversarial ASes")
	fs.Var(&o.asStrategy, "as-strategy",
		"adversary selection: 0 (most nodes) or 1 (most channels)")
	fs.Var(&o.drop, "drop-strategy",
		"when adversaries drop: all, intra-prob, intra-as, or inter-as")
	fs.IntVar(&o.workers, "workers", d.Workers, "number of routing workers")
	fs.IntVar(&o.maxHops, "max-hops", d.MaxHops, "longest route considered")
	fs.DurationVar(&o.routeTimeout, "route-timeout", d.RouteTimeout,
		"time limit of one route search")
	fs.StringVar(&o.record, "record", "",
		"record every payment into this SQLite file")
	fs.BoolVar(&o.monitor, "monitor", false, "serve a monitoring API")
	fs.IntVar(&o.monitorPort, "monitor-port", 0,
		"port of the monitoring API (default random)")
	fs.BoolVar(&o.monitorOpen, "monitor-open", false,
		"open the monitoring API in a browser")
}

// Config resolves the simulator settings.
func (o *SimulationOptions) Config(
	fs *pflag.FlagSet,
	args []string,
) (config.Simulation, error) {
	cfg := config.DefaultSimulation()

	if err := o.load(fs, args, &cfg.Common, &cfg); err != nil {
		return cfg, err
	}

	if fs.Changed("amount") {
		cfg.Amounts = []int64{o.amount}
	}

	if fs.Changed("run") {
		cfg.Seed = o.seed
	}

	if fs.Changed("payments") {
		cfg.Payments = o.payments
	}

	if fs.Changed("num-as") {
		cfg.NumAS = o.numAS
	}

	if fs.Changed("as-strategy") {
		cfg.ASStrategy = o.asStrategy.String()
	}

	if fs.Changed("drop-strategy") {
		cfg.DropStrategy = o.drop.String()
	}

	if fs.Changed("workers") {
		cfg.Workers = o.workers
	}

	if fs.Changed("max-hops") {
		cfg.MaxHops = o.maxHops
	}

	if fs.Changed("route-timeout") {
		cfg.RouteTimeout = o.routeTimeout
	}

	if fs.Changed("record") {
		cfg.Record = o.record
	}

	if fs.Changed("monitor") {
		cfg.Monitor = o.monitor
	}

	if fs.Changed("monitor-port") {
		cfg.MonitorPort = o.monitorPort
	}

	if fs.Changed("monitor-open") {
		cfg.MonitorOpen = o.monitorOpen
	}

	return cfg, cfg.Validate()
}

// AnalysisOptions holds the flags of the AS table tools.
type AnalysisOptions struct {
	commonOptions

	defaultOut  string
	detailFlag  string
	detailUsage string

	overwrite bool
	detail    bool
}

// NewAnalysisOptions creates options writing to defaultOut by default.
// detailFlag names the flag switching to per-node rows.
func NewAnalysisOptions(
	defaultOut, detailFlag, detailUsage string,
) *AnalysisOptions {
	return &AnalysisOptions{
		defaultOut:  defaultOut,
		detailFlag:  detailFlag,
		detailUsage: detailUsage,
	}
}

// Bind registers the analysis flags.
func (o *AnalysisOptions) Bind(fs *pflag.FlagSet) {
	o.bind(fs, config.DefaultAnalysis(o.defaultOut).Common)

	fs.BoolVar(&o.overwrite, "overwrite", false,
		"replace the output file if it exists")
	fs.BoolVar(&o.detail, o.detailFlag, false, o.detailUsage)
}

// Config resolves the analysis settings.
func (o *AnalysisOptions) Config(
	fs *pflag.FlagSet,
	args []string,
) (config.Analysis, error) {
	cfg := config.DefaultAnalysis(o.defaultOut)

	if err := o.load(fs, args, &cfg.Common, &cfg); err != nil {
		return cfg, err
	}

	if fs.Changed("overwrite") {
		cfg.Overwrite = o.overwrite
	}

	if fs.Changed(o.detailFlag) {
		cfg.Detail = o.detail
	}

	return cfg, cfg.Validate()
}
