// Package simulation provides a Monte Carlo engine for the terminal value
// of an invested lump sum under i.i.d. normal annual returns.
package simulation

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"github.com/iwvelando/mortgage-grid/pkg/mathutil"
)

// Sentinel errors for invalid simulation requests.
var (
	// ErrInvalidCapital indicates a negative initial capital.
	ErrInvalidCapital = errors.New("initial capital must be non-negative")

	// ErrInvalidVolatility indicates a negative volatility.
	ErrInvalidVolatility = errors.New("volatility must be non-negative")

	// ErrInvalidHorizon indicates a non-positive simulation horizon.
	ErrInvalidHorizon = errors.New("horizon must be positive")

	// ErrInvalidTrialCount indicates fewer than one trial.
	ErrInvalidTrialCount = errors.New("trial count must be at least one")
)

// Request describes one Monte Carlo run. MeanReturn and Volatility are
// ratios per year (0.09 = 9%).
type Request struct {
	InitialCapital float64
	MeanReturn     float64
	Volatility     float64
	Years          int
	Trials         int
}

// Result holds the full vector of simulated terminal values, one per
// trial, in trial order. Summary statistics are computed on demand so
// callers can derive whatever they need from the raw vector.
type Result struct {
	TerminalValues []float64
}

// Validate checks the request parameters.
func (req Request) Validate() error {
	if req.InitialCapital < 0 {
		return fmt.Errorf("initial capital %.2f: %w", req.InitialCapital, ErrInvalidCapital)
	}
	if req.Volatility < 0 {
		return fmt.Errorf("volatility %f: %w", req.Volatility, ErrInvalidVolatility)
	}
	if req.Years <= 0 {
		return fmt.Errorf("horizon %d years: %w", req.Years, ErrInvalidHorizon)
	}
	if req.Trials < 1 {
		return fmt.Errorf("trial count %d: %w", req.Trials, ErrInvalidTrialCount)
	}
	return nil
}

// Simulate runs the Monte Carlo simulation using the provided generator.
// Each trial draws Years independent annual returns from a normal
// distribution with the requested mean and volatility and compounds the
// initial capital through them. The generator is the caller's; a fixed
// seed reproduces the result exactly.
func Simulate(rng *rand.Rand, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	terminal := make([]float64, req.Trials)
	for trial := range terminal {
		growth := 1.0
		for year := 0; year < req.Years; year++ {
			annualReturn := req.MeanReturn + req.Volatility*rng.NormFloat64()
			growth *= 1 + annualReturn
		}
		terminal[trial] = req.InitialCapital * growth
	}

	return Result{TerminalValues: terminal}, nil
}

// Mean returns the sample mean of the terminal values.
func (r Result) Mean() float64 {
	return mathutil.Mean(r.TerminalValues)
}

// WorstCase returns the 5th-percentile terminal value, the lower-tail
// outcome used as the worst-case proxy.
func (r Result) WorstCase() float64 {
	return mathutil.Percentile(r.TerminalValues, constants.WorstCasePercentile)
}
