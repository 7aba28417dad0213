// Package optimizer reduces a scenario table to the cost-minimizing down
// payment per (term, rate) group.
package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/mortgage-grid/internal/engine"
	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"github.com/iwvelando/mortgage-grid/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrEmptyGroup indicates a requested (term, rate) combination produced
// zero feasible scenario records.
var ErrEmptyGroup = errors.New("no feasible scenarios for requested term and rate")

// Summary is one row of the optimization table: for a (term, rate) group,
// the minimal net cost under each metric and the down payment achieving
// it. The two minima are selected independently and may come from
// different down payments.
type Summary struct {
	TermYears             int     `json:"termYears"`
	AnnualRate            float64 `json:"annualRate"`
	MinNetCostMean        float64 `json:"minNetCostMean"`
	DownPaymentAtMinMean  float64 `json:"downPaymentAtMinMean"`
	MinNetCostWorst       float64 `json:"minNetCostWorst"`
	DownPaymentAtMinWorst float64 `json:"downPaymentAtMinWorst"`
}

type groupKey struct {
	term int
	rate float64
}

// Optimize groups the result set's records by (term, rate) and extracts
// the minimal-cost record under both metrics. Ties go to the smallest
// down payment. Every requested (term, rate) pair must have produced at
// least one record; otherwise ErrEmptyGroup is returned.
func Optimize(logger *zap.Logger, rs *engine.ResultSet) ([]Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rs == nil {
		return nil, fmt.Errorf("result set cannot be nil")
	}

	groups := make(map[groupKey][]engine.ScenarioRecord)
	for _, record := range rs.Records {
		key := groupKey{term: record.TermYears, rate: record.AnnualRate}
		groups[key] = append(groups[key], record)
	}

	var summaries []Summary
	for _, term := range rs.Terms {
		for _, rate := range rs.Rates {
			records, ok := groups[groupKey{term: term, rate: rate}]
			if !ok || len(records) == 0 {
				return nil, fmt.Errorf("term %d rate %f: %w", term, rate, ErrEmptyGroup)
			}
			summaries = append(summaries, reduceGroup(records))
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TermYears != summaries[j].TermYears {
			return summaries[i].TermYears < summaries[j].TermYears
		}
		return summaries[i].AnnualRate < summaries[j].AnnualRate
	})

	logger.Debug("optimization complete",
		zap.String("op", "optimizer.Optimize"),
		zap.Int("groups", len(summaries)),
	)

	return summaries, nil
}

// reduceGroup selects the minimal record under each metric. Records are
// scanned in ascending down-payment order with a strict comparison, so a
// flat cost curve resolves to the smallest qualifying down payment.
func reduceGroup(records []engine.ScenarioRecord) Summary {
	sorted := append([]engine.ScenarioRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DownPayment < sorted[j].DownPayment
	})

	best := Summary{
		TermYears:             sorted[0].TermYears,
		AnnualRate:            sorted[0].AnnualRate,
		MinNetCostMean:        sorted[0].NetCostMean,
		DownPaymentAtMinMean:  sorted[0].DownPayment,
		MinNetCostWorst:       sorted[0].NetCostWorst,
		DownPaymentAtMinWorst: sorted[0].DownPayment,
	}
	for _, record := range sorted[1:] {
		if record.NetCostMean < best.MinNetCostMean {
			best.MinNetCostMean = record.NetCostMean
			best.DownPaymentAtMinMean = record.DownPayment
		}
		if record.NetCostWorst < best.MinNetCostWorst {
			best.MinNetCostWorst = record.NetCostWorst
			best.DownPaymentAtMinWorst = record.DownPayment
		}
	}
	return best
}

// FindSummary returns the summary matching the given term and rate
// (ratio), or nil when absent.
func FindSummary(summaries []Summary, termYears int, annualRate float64) *Summary {
	for i := range summaries {
		if summaries[i].TermYears == termYears &&
			mathutil.WithinTolerance(summaries[i].AnnualRate, annualRate, constants.RateTolerance) {
			return &summaries[i]
		}
	}
	return nil
}
