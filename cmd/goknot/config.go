package main

import (
	"flag"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the resolved command line, environment (GOKNOT_*), and config file settings.
type Config struct {
	Catalog           string   `mapstructure:"catalog"`
	Seed              string   `mapstructure:"seed"`
	Radius            int      `mapstructure:"radius"`
	PruneUnknown      bool     `mapstructure:"prune-unknown"`
	MaxNodes          int      `mapstructure:"max-nodes"`
	Modulus           int32    `mapstructure:"modulus"`
	Penalty           *float64 `mapstructure:"penalty"` // nil for the catalogue default
	DistanceThreshold int      `mapstructure:"distance-threshold"`
	Good              string   `mapstructure:"good"`
	Out               string   `mapstructure:"out"`
	REPL              bool     `mapstructure:"repl"`
}

func newFlagSet(goFlags *flag.FlagSet) *pflag.FlagSet {
	fset := pflag.NewFlagSet("goknot", pflag.ContinueOnError)
	fset.String("catalog", "", "Path to the knot catalogue report (.json, .yaml)")
	fset.String("seed", "", "Seed knot expression, e.g. \"p3: 0 1 15 2\" (default: the lowest cost knot)")
	fset.Int("radius", 1, "Number of moves to explore out from the seed")
	fset.Bool("prune-unknown", false, "Do not expand uncatalogued knots")
	fset.Int("max-nodes", 0, "Stop exploring after the shell that reaches this many knots (0 for no limit)")
	fset.Int32("modulus", 0, "Angle modulus (default: the catalogue's num_angles)")
	fset.Float64("penalty", -1, "Cost assigned to uncatalogued knots (negative for the default of 3)")
	fset.Int("distance-threshold", -1, "If >= 0, output the whole-catalogue distance graph with this threshold instead")
	fset.String("good", "", "Path to a catalogue of good knots; outputs adjacency statistics instead")
	fset.String("out", "", "Output pathname (default: stdout)")
	fset.Bool("repl", false, "Start an interactive gpython session")
	fset.String("config", "", "Path to the configuration file")
	if goFlags != nil {
		fset.AddGoFlagSet(goFlags)
	}
	return fset
}

// LoadConfig parses args and merges them over GOKNOT_* environment variables and the config file (if any).
//
// Returns the resolved Config and the remaining positional args.
func LoadConfig(args []string, goFlags *flag.FlagSet) (Config, []string, error) {
	var cfg Config

	fset := newFlagSet(goFlags)
	if err := fset.Parse(args); err != nil {
		return cfg, nil, err
	}

	v := viper.New()
	v.SetDefault("radius", 1)
	v.SetDefault("distance-threshold", -1)
	v.SetDefault("penalty", -1)
	if err := v.BindPFlags(fset); err != nil {
		return cfg, nil, err
	}

	v.SetEnvPrefix("GOKNOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("goknot")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configFile != "" {
			return cfg, nil, errors.Wrap(err, "reading config")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, nil, errors.Wrap(err, "unable to decode config")
	}
	if cfg.Penalty != nil && *cfg.Penalty < 0 {
		cfg.Penalty = nil
	}
	return cfg, fset.Args(), nil
}
