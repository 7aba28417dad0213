// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"github.com/iwvelando/mortgage-grid/pkg/loans"
	"github.com/iwvelando/mortgage-grid/pkg/simulation"
	"github.com/spf13/viper"
)

// ErrInvalidStep indicates a non-positive down-payment step.
var ErrInvalidStep = errors.New("down payment step must be positive")

// ErrEmptyGrid indicates that no loan terms or no interest rates were
// requested, leaving nothing to enumerate.
var ErrEmptyGrid = errors.New("at least one term and one rate are required")

// Configuration holds all configuration for mortgage-grid. Rates and
// returns are expressed in percent, matching how people quote them; the
// engine converts to ratios.
type Configuration struct {
	HomePrice       float64   `yaml:"homePrice"`
	TotalSavings    float64   `yaml:"totalSavings"`
	Terms           []int     `yaml:"terms"`           // loan terms in years
	Rates           []float64 `yaml:"rates"`           // annual interest rates in percent
	MeanReturn      float64   `yaml:"meanReturn"`      // mean annual investment return in percent
	Volatility      float64   `yaml:"volatility"`      // annual return standard deviation in percent
	TrialCount      int       `yaml:"trialCount"`      // Monte Carlo trials per scenario
	DownPaymentStep float64   `yaml:"downPaymentStep"` // increment between candidate down payments
	RandomSeed      *int64    `yaml:"randomSeed"`      // optional master seed for reproducible runs
	Workers         int       `yaml:"workers"`         // parallel scenario workers

	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills in defaults for optional settings.
func (conf *Configuration) ApplyDefaults() {
	if conf.DownPaymentStep == 0 {
		conf.DownPaymentStep = constants.DefaultDownPaymentStep
	}
	if conf.TrialCount == 0 {
		conf.TrialCount = constants.DefaultTrialCount
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.NumCPU()
	}
}

// Validate rejects structurally invalid numeric parameters. Invalid input
// is a caller error, reported synchronously and never retried.
func (conf *Configuration) Validate() error {
	if conf.HomePrice < 0 {
		return fmt.Errorf("home price %.2f: %w", conf.HomePrice, simulation.ErrInvalidCapital)
	}
	if conf.TotalSavings < 0 {
		return fmt.Errorf("total savings %.2f: %w", conf.TotalSavings, simulation.ErrInvalidCapital)
	}
	if len(conf.Terms) == 0 || len(conf.Rates) == 0 {
		return ErrEmptyGrid
	}
	for _, term := range conf.Terms {
		if term <= 0 {
			return fmt.Errorf("term %d years: %w", term, loans.ErrInvalidTerm)
		}
	}
	for _, rate := range conf.Rates {
		if rate < 0 {
			return fmt.Errorf("rate %f%%: %w", rate, loans.ErrInvalidRate)
		}
	}
	if conf.Volatility < 0 {
		return fmt.Errorf("volatility %f%%: %w", conf.Volatility, simulation.ErrInvalidVolatility)
	}
	if conf.TrialCount < 1 {
		return fmt.Errorf("trial count %d: %w", conf.TrialCount, simulation.ErrInvalidTrialCount)
	}
	if conf.DownPaymentStep <= 0 {
		return fmt.Errorf("down payment step %.2f: %w", conf.DownPaymentStep, ErrInvalidStep)
	}
	return nil
}
