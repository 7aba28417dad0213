package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/mortgage-grid/internal/config"
	"github.com/iwvelando/mortgage-grid/pkg/loans"
	"go.uber.org/zap"
)

func testConfiguration() *config.Configuration {
	seed := int64(42)
	conf := &config.Configuration{
		HomePrice:       250000,
		TotalSavings:    150000,
		Terms:           []int{25},
		Rates:           []float64{3.8},
		MeanReturn:      0,
		Volatility:      0,
		TrialCount:      1,
		DownPaymentStep: 50000,
		RandomSeed:      &seed,
	}
	conf.ApplyDefaults()
	return conf
}

func TestRunWorkedExample(t *testing.T) {
	// price 250000, savings 150000, step 50000 yields down payments
	// 0, 50000, 100000, 150000, all feasible.
	eng, err := New(zap.NewNop(), testConfiguration())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	rs, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(rs.Records) != 4 {
		t.Fatalf("got %d records, expected 4", len(rs.Records))
	}

	for i, expected := range []float64{0, 50000, 100000, 150000} {
		if rs.Records[i].DownPayment != expected {
			t.Errorf("record %d down payment = %.2f, expected %.2f", i, rs.Records[i].DownPayment, expected)
		}
	}

	record, ok := rs.Lookup(25, 0.038, 150000)
	if !ok {
		t.Fatal("Lookup(25, 0.038, 150000) missed")
	}
	if record.LoanAmount != 100000 {
		t.Errorf("loan amount = %.2f, expected 100000", record.LoanAmount)
	}
	if math.Abs(record.MonthlyPayment-512.82) > 0.01 {
		t.Errorf("monthly payment = %.2f, expected about 512.82", record.MonthlyPayment)
	}
	if math.Abs(record.TotalRepaid-153846.74) > 1.0 {
		t.Errorf("total repaid = %.2f, expected about 153846.74", record.TotalRepaid)
	}
	if record.InvestableCapital != 0 {
		t.Errorf("investable capital = %.2f, expected 0", record.InvestableCapital)
	}
	// Nothing left to invest, so both net costs equal the repayment total.
	if math.Abs(record.NetCostMean-record.TotalRepaid) > 1e-9 {
		t.Errorf("net cost mean = %.2f, expected %.2f", record.NetCostMean, record.TotalRepaid)
	}
	if math.Abs(record.NetCostWorst-record.TotalRepaid) > 1e-9 {
		t.Errorf("net cost worst = %.2f, expected %.2f", record.NetCostWorst, record.TotalRepaid)
	}
}

func TestRunSkipsInfeasibleCells(t *testing.T) {
	conf := testConfiguration()
	conf.HomePrice = 100000 // savings exceed the price

	eng, err := New(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	rs, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	// 150000 down on a 100000 home would mean a negative loan; that cell
	// is silently dropped.
	if len(rs.Records) != 3 {
		t.Fatalf("got %d records, expected 3", len(rs.Records))
	}
	for _, record := range rs.Records {
		if record.LoanAmount < 0 {
			t.Errorf("record with down payment %.2f has negative loan amount %.2f",
				record.DownPayment, record.LoanAmount)
		}
	}
}

func TestRunReproducibleWithSeed(t *testing.T) {
	conf := testConfiguration()
	conf.Volatility = 15
	conf.MeanReturn = 9
	conf.TrialCount = 200

	eng, err := New(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	first, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	second, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Errorf("record %d differs between identically seeded runs:\n%+v\n%+v",
				i, first.Records[i], second.Records[i])
		}
	}
}

func TestRunCellStreamsAreIndependent(t *testing.T) {
	conf := testConfiguration()
	conf.Volatility = 15
	conf.MeanReturn = 9
	conf.TrialCount = 50
	conf.HomePrice = 300000 // keep every cell's investable capital positive

	eng, err := New(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	rs, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	// Cells with equal investable capital would report identical outcomes
	// if they shared sample paths; distinct sub-seeds make the simulated
	// growth factors differ.
	seen := make(map[float64]bool)
	for _, record := range rs.Records {
		if record.InvestableCapital <= 0 {
			continue
		}
		growth := record.MeanInvestmentValue / record.InvestableCapital
		if seen[growth] {
			t.Errorf("duplicate mean growth factor %f across cells; streams are correlated", growth)
		}
		seen[growth] = true
	}
}

func TestRunMonotonicityInDownPayment(t *testing.T) {
	eng, err := New(zap.NewNop(), testConfiguration())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	rs, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	for i := 1; i < len(rs.Records); i++ {
		prev, cur := rs.Records[i-1], rs.Records[i]
		if cur.LoanAmount >= prev.LoanAmount {
			t.Errorf("loan amount did not decrease: %.2f -> %.2f", prev.LoanAmount, cur.LoanAmount)
		}
		if cur.MonthlyPayment >= prev.MonthlyPayment && prev.LoanAmount > 0 {
			t.Errorf("monthly payment did not decrease: %.2f -> %.2f", prev.MonthlyPayment, cur.MonthlyPayment)
		}
		if cur.TotalRepaid >= prev.TotalRepaid && prev.LoanAmount > 0 {
			t.Errorf("total repaid did not decrease: %.2f -> %.2f", prev.TotalRepaid, cur.TotalRepaid)
		}
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	conf := testConfiguration()
	conf.DownPaymentStep = 1000
	conf.TrialCount = 1000
	conf.Volatility = 15

	eng, err := New(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() with cancelled context returned %v, expected context.Canceled", err)
	}
}

func TestLookupMiss(t *testing.T) {
	eng, err := New(zap.NewNop(), testConfiguration())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	rs, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if _, ok := rs.Lookup(25, 0.038, 75000); ok {
		t.Error("Lookup() hit for a down payment not on the grid")
	}
	if _, ok := rs.Lookup(30, 0.038, 50000); ok {
		t.Error("Lookup() hit for a term not in the grid")
	}
	if _, ok := rs.Lookup(25, 0.045, 50000); ok {
		t.Error("Lookup() hit for a rate not in the grid")
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Configuration)
		expected error
	}{
		{
			name:     "Negative term",
			mutate:   func(c *config.Configuration) { c.Terms = []int{-5} },
			expected: loans.ErrInvalidTerm,
		},
		{
			name:     "Negative rate",
			mutate:   func(c *config.Configuration) { c.Rates = []float64{-1} },
			expected: loans.ErrInvalidRate,
		},
		{
			name:     "No terms",
			mutate:   func(c *config.Configuration) { c.Terms = nil },
			expected: config.ErrEmptyGrid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testConfiguration()
			tt.mutate(conf)
			if _, err := New(zap.NewNop(), conf); !errors.Is(err, tt.expected) {
				t.Errorf("New() error = %v, expected %v", err, tt.expected)
			}
		})
	}
}
