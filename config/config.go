// Package config loads the settings of the command-line solver from
// defaults, an optional YAML file, environment variables and flags.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/regretlab/go-cfr"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. CFR_ITERATIONS=1000.
const EnvPrefix = "CFR"

// Config holds the settings of a training run.
type Config struct {
	Game           string        `mapstructure:"game"`
	Solver         string        `mapstructure:"solver"`
	Iterations     int           `mapstructure:"iterations"`
	Duration       time.Duration `mapstructure:"duration"`
	Seed           uint64        `mapstructure:"seed"`
	Seeds          int           `mapstructure:"seeds"`
	Parallelism    int           `mapstructure:"parallelism"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
	ProgressLog    string        `mapstructure:"progress_log"`
	Output         string        `mapstructure:"output"`
	Resume         string        `mapstructure:"resume"`

	Discount Discount `mapstructure:"discount"`
}

// Discount selects the regret and average strategy weighting scheme.
type Discount struct {
	RegretMatchingPlus bool    `mapstructure:"regret_matching_plus"`
	LinearWeighting    bool    `mapstructure:"linear_weighting"`
	Alpha              float64 `mapstructure:"alpha"`
	Beta               float64 `mapstructure:"beta"`
	Gamma              float64 `mapstructure:"gamma"`
}

// Params returns the solver parameters for d.
func (d Discount) Params() cfr.DiscountParams {
	return cfr.DiscountParams{
		UseRegretMatchingPlus: d.RegretMatchingPlus,
		LinearWeighting:       d.LinearWeighting,
		DiscountAlpha:         d.Alpha,
		DiscountBeta:          d.Beta,
		DiscountGamma:         d.Gamma,
	}
}

// Games and Solvers are the accepted values of Config.Game and Config.Solver.
var (
	Games   = []string{"kuhn", "leduc", "dudo"}
	Solvers = []string{"cfr", "cfr+", "mccfr"}
)

var defaults = map[string]interface{}{
	"game":            "kuhn",
	"solver":          "cfr",
	"iterations":      10000,
	"duration":        time.Duration(0),
	"seed":            uint64(1),
	"seeds":           1,
	"parallelism":     0,
	"report_interval": 10 * time.Second,
	"progress_log":    "",
	"output":          "",
	"resume":          "",

	"discount.regret_matching_plus": false,
	"discount.linear_weighting":     false,
	"discount.alpha":                0.0,
	"discount.beta":                 0.0,
	"discount.gamma":                0.0,
}

// Load reads the configuration. Later sources take precedence: defaults,
// then the YAML file at path (if non-empty), then CFR_* environment
// variables, then overrides (typically the command-line flags that were
// explicitly set).
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	if c.Solver == "cfr+" && c.Discount == (Discount{}) {
		c.Discount = Discount{RegretMatchingPlus: true, LinearWeighting: true}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that the configuration describes a runnable job.
func (c *Config) Validate() error {
	if !contains(Games, c.Game) {
		return errors.Errorf("unknown game %q, expected one of %v", c.Game, Games)
	}

	if !contains(Solvers, c.Solver) {
		return errors.Errorf("unknown solver %q, expected one of %v", c.Solver, Solvers)
	}

	if c.Iterations <= 0 && c.Duration <= 0 {
		return errors.New("one of iterations or duration must be positive")
	}

	if c.Seeds <= 0 {
		return errors.Errorf("seeds must be positive, got %d", c.Seeds)
	}

	if c.Resume != "" && c.Seeds > 1 {
		return errors.New("resume requires a single seed")
	}

	return nil
}

// RunSeeds returns the seeds of the runs to perform.
func (c *Config) RunSeeds() []uint64 {
	seeds := make([]uint64, c.Seeds)
	for i := range seeds {
		seeds[i] = c.Seed + uint64(i)
	}

	return seeds
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}

	return false
}
