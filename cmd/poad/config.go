package main

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/iov-one/poa/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to the environment variable of each setting.
const envPrefix = "POAD_"

// Config holds the node settings. Values are read from the configuration
// file, then from the environment, then from the command line flags, each
// overriding the previous one.
type Config struct {
	Home        string `yaml:"home" env:"HOME"`
	Bind        string `yaml:"bind" env:"BIND"`
	Debug       bool   `yaml:"debug" env:"DEBUG"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Home:        filepath.Join(os.ExpandEnv("$HOME"), ".poad"),
		Bind:        "tcp://localhost:26658",
		LogLevel:    "info",
		MetricsAddr: "localhost:26660",
	}
}

// ConfigFile returns the default location of the configuration file.
func ConfigFile(home string) string {
	return filepath.Join(home, "config", "poad.yaml")
}

// LoadConfig builds the configuration. A missing file at the default
// location is ignored, an explicitly given one must exist.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""

	// the home directory locates the default file
	if err := env.Parse(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := applyFlags(&cfg, flags); err != nil {
		return cfg, err
	}
	if !explicit {
		path = ConfigFile(cfg.Home)
	}

	raw, err := ioutil.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case err != nil:
		return cfg, errors.Wrapf(errors.ErrInput, "read %s: %s", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Wrapf(errors.ErrInput, "parse %s: %s", path, err)
		}
	}

	if err := env.Parse(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := applyFlags(&cfg, flags); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFlags copies the flags set on the command line.
func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case flagHome:
			cfg.Home = f.Value.String()
		case flagBind:
			cfg.Bind = f.Value.String()
		case flagLogLevel:
			cfg.LogLevel = f.Value.String()
		case flagMetrics:
			cfg.MetricsAddr = f.Value.String()
		case flagDebug:
			cfg.Debug, err = flags.GetBool(flagDebug)
		}
	})
	return err
}
