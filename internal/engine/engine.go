// Package engine enumerates the financing scenario grid and computes one
// cost record per (term, rate, down payment) combination.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/iwvelando/mortgage-grid/internal/config"
	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"github.com/iwvelando/mortgage-grid/pkg/loans"
	"github.com/iwvelando/mortgage-grid/pkg/mathutil"
	"github.com/iwvelando/mortgage-grid/pkg/simulation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScenarioRecord is one row of the scenario table: the full cost picture
// for a single (term, rate, down payment) combination. AnnualRate is a
// ratio (0.038 = 3.8%).
type ScenarioRecord struct {
	TermYears                int     `json:"termYears"`
	AnnualRate               float64 `json:"annualRate"`
	DownPayment              float64 `json:"downPayment"`
	LoanAmount               float64 `json:"loanAmount"`
	MonthlyPayment           float64 `json:"monthlyPayment"`
	TotalRepaid              float64 `json:"totalRepaid"`
	InvestableCapital        float64 `json:"investableCapital"`
	MeanInvestmentValue      float64 `json:"meanInvestmentValue"`
	WorstCaseInvestmentValue float64 `json:"worstCaseInvestmentValue"`
	NetCostMean              float64 `json:"netCostMean"`
	NetCostWorst             float64 `json:"netCostWorst"`
}

// ResultSet is the output of one grid enumeration: every feasible
// scenario record plus the master seed that produced them. Terms and
// Rates echo the requested grid axes (rates as ratios) so downstream
// consumers can verify group coverage.
type ResultSet struct {
	Seed    int64            `json:"seed"`
	Terms   []int            `json:"terms"`
	Rates   []float64        `json:"rates"`
	Records []ScenarioRecord `json:"records"`
}

// Engine drives the scenario grid computation for one configuration.
type Engine struct {
	logger *zap.Logger
	conf   *config.Configuration
}

type cell struct {
	term        int
	rate        float64 // ratio
	downPayment float64
}

// New constructs an Engine for the provided configuration. The
// configuration is validated here; Run assumes valid input.
func New(logger *zap.Logger, conf *config.Configuration) (*Engine, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Engine{logger: logger, conf: conf}, nil
}

// Run enumerates the full scenario grid. Each cell is computed on its own
// worker with an independently seeded generator, so the result is
// reproducible for a given master seed regardless of scheduling. The
// context is checked between scenario computations; cancellation abandons
// the run.
func (e *Engine) Run(ctx context.Context) (*ResultSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	seed := e.masterSeed()
	cells := e.enumerateCells()

	workers := e.conf.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	e.logger.Debug("starting scenario grid run",
		zap.String("op", "engine.Run"),
		zap.Int("cells", len(cells)),
		zap.Int("trials", e.conf.TrialCount),
		zap.Int("workers", workers),
		zap.Int64("seed", seed),
	)

	records := make([]ScenarioRecord, len(cells))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range cells {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			record, err := e.computeScenario(c, subSeed(seed, i))
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].TermYears != records[j].TermYears {
			return records[i].TermYears < records[j].TermYears
		}
		if records[i].AnnualRate != records[j].AnnualRate {
			return records[i].AnnualRate < records[j].AnnualRate
		}
		return records[i].DownPayment < records[j].DownPayment
	})

	rates := make([]float64, len(e.conf.Rates))
	for i, ratePct := range e.conf.Rates {
		rates[i] = ratePct / constants.PercentageMultiplier
	}

	return &ResultSet{
		Seed:    seed,
		Terms:   append([]int(nil), e.conf.Terms...),
		Rates:   rates,
		Records: records,
	}, nil
}

// Lookup returns the record matching the given term, rate (ratio), and
// down payment. A miss is a normal outcome, not an error.
func (rs *ResultSet) Lookup(termYears int, annualRate, downPayment float64) (ScenarioRecord, bool) {
	for _, record := range rs.Records {
		if record.TermYears != termYears {
			continue
		}
		if !mathutil.WithinTolerance(record.AnnualRate, annualRate, constants.RateTolerance) {
			continue
		}
		if !mathutil.WithinTolerance(record.DownPayment, downPayment, constants.CurrencyTolerance) {
			continue
		}
		return record, true
	}
	return ScenarioRecord{}, false
}

// enumerateCells builds the flat list of feasible grid cells. Down
// payments step from 0 to the total savings inclusive; combinations that
// would require a negative loan are skipped, not errors.
func (e *Engine) enumerateCells() []cell {
	var cells []cell
	for _, term := range e.conf.Terms {
		for _, ratePct := range e.conf.Rates {
			rate := ratePct / constants.PercentageMultiplier
			for i := 0; ; i++ {
				downPayment := float64(i) * e.conf.DownPaymentStep
				if downPayment > e.conf.TotalSavings+constants.CurrencyTolerance {
					break
				}
				if e.conf.HomePrice-downPayment < 0 {
					continue
				}
				cells = append(cells, cell{term: term, rate: rate, downPayment: downPayment})
			}
		}
	}
	return cells
}

func (e *Engine) computeScenario(c cell, seed int64) (ScenarioRecord, error) {
	loanAmount := e.conf.HomePrice - c.downPayment

	monthlyPayment, err := loans.MonthlyPayment(loanAmount, c.rate, c.term)
	if err != nil {
		return ScenarioRecord{}, fmt.Errorf("amortization for term %d rate %f: %w", c.term, c.rate, err)
	}
	totalRepaid := monthlyPayment * float64(c.term) * constants.MonthsPerYear

	investableCapital := e.conf.TotalSavings - c.downPayment
	if investableCapital < 0 {
		// The grid end is tolerance-inclusive, so the last step can
		// overshoot the savings by a sub-cent float error.
		investableCapital = 0
	}
	result, err := simulation.Simulate(rand.New(rand.NewSource(seed)), simulation.Request{
		InitialCapital: investableCapital,
		MeanReturn:     e.conf.MeanReturn / constants.PercentageMultiplier,
		Volatility:     e.conf.Volatility / constants.PercentageMultiplier,
		Years:          c.term,
		Trials:         e.conf.TrialCount,
	})
	if err != nil {
		return ScenarioRecord{}, fmt.Errorf("simulation for term %d rate %f: %w", c.term, c.rate, err)
	}

	meanValue := result.Mean()
	worstValue := result.WorstCase()

	return ScenarioRecord{
		TermYears:                c.term,
		AnnualRate:               c.rate,
		DownPayment:              c.downPayment,
		LoanAmount:               loanAmount,
		MonthlyPayment:           monthlyPayment,
		TotalRepaid:              totalRepaid,
		InvestableCapital:        investableCapital,
		MeanInvestmentValue:      meanValue,
		WorstCaseInvestmentValue: worstValue,
		NetCostMean:              totalRepaid - meanValue,
		NetCostWorst:             totalRepaid - worstValue,
	}, nil
}

func (e *Engine) masterSeed() int64 {
	if e.conf.RandomSeed != nil {
		return *e.conf.RandomSeed
	}
	return time.Now().UnixNano()
}

// subSeed derives an independent per-cell seed from the master seed and
// the cell index via a splitmix64 finalizer. The stream a cell sees
// depends only on its index, never on worker interleaving.
func subSeed(master int64, index int) int64 {
	x := uint64(master) ^ (uint64(index)+1)*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}
