// Package config holds the settings of the command line tools and loads them
// from YAML files, the environment, and flags.
package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lncensor/lncensor/adversary"
	"github.com/lncensor/lncensor/routing"
	"github.com/lncensor/lncensor/simulation"
	"github.com/lncensor/lncensor/topology"
)

// EnvASNDatabase names the variable holding the default AS dataset path.
const EnvASNDatabase = "LNCENSOR_ASN_DB"

// DefaultAmounts are the payment sizes in satoshi simulated when no amount
// is given.
var DefaultAmounts = []int64{100, 1000, 10000, 100000, 1000000, 10000000}

// Common holds the settings shared by every tool.
type Common struct {
	GraphFile   string `yaml:"graph_file" validate:"required"`
	GraphSource string `yaml:"graph_source" validate:"graphsource"`
	ASNDatabase string `yaml:"asn_db" validate:"required"`
	Out         string `yaml:"out" validate:"required"`
	Log         string `yaml:"log" validate:"oneof=off error warn info debug trace"`
	Verbose     bool   `yaml:"verbose"`
}

// Simulation configures the simulator.
type Simulation struct {
	Common `yaml:",inline"`

	Amounts      []int64       `yaml:"amounts" validate:"omitempty,dive,gt=0"`
	Seed         uint64        `yaml:"run"`
	Payments     int           `yaml:"payments" validate:"gt=0"`
	NumAS        int           `yaml:"num_as" validate:"gte=0"`
	ASStrategy   string        `yaml:"as_strategy" validate:"asstrategy"`
	DropStrategy string        `yaml:"drop_strategy" validate:"dropstrategy"`
	Workers      int           `yaml:"workers" validate:"gt=0"`
	MaxHops      int           `yaml:"max_hops" validate:"gt=0"`
	RouteTimeout time.Duration `yaml:"route_timeout" validate:"gt=0"`
	Record       string        `yaml:"record"`
	Monitor      bool          `yaml:"monitor"`
	MonitorPort  int           `yaml:"monitor_port" validate:"gte=0,lte=65535"`
	MonitorOpen  bool          `yaml:"monitor_open"`
}

// Analysis configures the AS table tools.
type Analysis struct {
	Common `yaml:",inline"`

	Overwrite bool `yaml:"overwrite"`

	// Detail switches to one row per node.
	Detail bool `yaml:"detail"`
}

func defaultCommon(out string) Common {
	return Common{
		GraphSource: topology.SourceLND.String(),
		Out:         out,
		Log:         "info",
	}
}

// DefaultSimulation returns the simulator defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		Common:       defaultCommon("sim-results"),
		Seed:         19,
		Payments:     1000,
		NumAS:        5,
		ASStrategy:   adversary.MaxChannels.String(),
		DropStrategy: simulation.DropAll.String(),
		Workers:      runtime.GOMAXPROCS(0),
		MaxHops:      routing.DefaultMaxHops,
		RouteTimeout: simulation.DefaultRouteTimeout,
	}
}

// DefaultAnalysis returns the analysis defaults, writing to out.
func DefaultAnalysis(out string) Analysis {
	return Analysis{Common: defaultCommon(out)}
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected.
func LoadFile(path string, cfg any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return errors.Wrapf(err, "decode config %s", path)
	}

	return nil
}

// LoadDotEnv loads .env files into the environment. Missing files are
// ignored and variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "load %s", f)
		}
	}

	return nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Common) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvASNDatabase)); v != "" {
		c.ASNDatabase = v
	}
}

// Validate checks the settings.
func (c *Simulation) Validate() error {
	return validateStruct(c)
}

// Validate checks the settings.
func (c *Analysis) Validate() error {
	return validateStruct(c)
}

// LogLevel is the effective log level. Verbose forces debug.
func (c *Common) LogLevel() string {
	if c.Verbose && c.Log != "trace" {
		return "debug"
	}

	return c.Log
}
