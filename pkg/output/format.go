// Package output provides utilities for formatting and displaying
// scenario and optimization tables.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-grid/internal/engine"
	"github.com/iwvelando/mortgage-grid/internal/optimizer"
	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, rs *engine.ResultSet, summaries []optimizer.Summary) {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "--- Optimal down payment per scenario (seed %d) ---\n", rs.Seed)
	fmt.Fprintf(w, "Term | Rate  | Min net cost (mean) | Down payment  | Min net cost (worst) | Down payment\n")
	fmt.Fprintf(w, "____ | ____  | ___________________ | ____________  | ____________________ | ____________\n")
	for _, s := range summaries {
		_, _ = p.Fprintf(w, "%dy | %.2f%% | %.2f | %.2f | %.2f | %.2f\n",
			s.TermYears, s.AnnualRate*constants.PercentageMultiplier,
			s.MinNetCostMean, s.DownPaymentAtMinMean,
			s.MinNetCostWorst, s.DownPaymentAtMinWorst)
	}

	fmt.Fprintf(w, "\n--- Scenario table ---\n")
	fmt.Fprintf(w, "Term | Rate  | Down payment | Loan | Monthly | Total repaid | Mean invest | Worst invest | Net cost mean | Net cost worst\n")
	for _, r := range rs.Records {
		_, _ = p.Fprintf(w, "%dy | %.2f%% | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f\n",
			r.TermYears, r.AnnualRate*constants.PercentageMultiplier,
			r.DownPayment, r.LoanAmount, r.MonthlyPayment, r.TotalRepaid,
			r.MeanInvestmentValue, r.WorstCaseInvestmentValue,
			r.NetCostMean, r.NetCostWorst)
	}
}

// CsvFormat outputs in comma-separated value format, the scenario table
// followed by the optimization summary.
func CsvFormat(w io.Writer, rs *engine.ResultSet, summaries []optimizer.Summary) {
	fmt.Fprintf(w, `"termYears","ratePercent","downPayment","loanAmount","monthlyPayment","totalRepaid","investableCapital","meanInvestmentValue","worstCaseInvestmentValue","netCostMean","netCostWorst"`)
	fmt.Fprintf(w, "\n")
	for _, r := range rs.Records {
		fmt.Fprintf(w, `"%d","%.4f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			r.TermYears, r.AnnualRate*constants.PercentageMultiplier,
			r.DownPayment, r.LoanAmount, r.MonthlyPayment, r.TotalRepaid,
			r.InvestableCapital, r.MeanInvestmentValue, r.WorstCaseInvestmentValue,
			r.NetCostMean, r.NetCostWorst)
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"termYears","ratePercent","minNetCostMean","downPaymentAtMinMean","minNetCostWorst","downPaymentAtMinWorst"`)
	fmt.Fprintf(w, "\n")
	for _, s := range summaries {
		fmt.Fprintf(w, `"%d","%.4f","%.2f","%.2f","%.2f","%.2f"`,
			s.TermYears, s.AnnualRate*constants.PercentageMultiplier,
			s.MinNetCostMean, s.DownPaymentAtMinMean,
			s.MinNetCostWorst, s.DownPaymentAtMinWorst)
		fmt.Fprintf(w, "\n")
	}
}

// DetailFormat prints the full field breakdown of a single scenario
// record, used by the point-lookup display.
func DetailFormat(w io.Writer, r engine.ScenarioRecord) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "Term: %d years\n", r.TermYears)
	_, _ = p.Fprintf(w, "Rate: %.2f%%\n", r.AnnualRate*constants.PercentageMultiplier)
	_, _ = p.Fprintf(w, "Down payment: %.2f\n", r.DownPayment)
	_, _ = p.Fprintf(w, "Loan amount: %.2f\n", r.LoanAmount)
	_, _ = p.Fprintf(w, "Monthly payment: %.2f\n", r.MonthlyPayment)
	_, _ = p.Fprintf(w, "Total repaid: %.2f\n", r.TotalRepaid)
	_, _ = p.Fprintf(w, "Investable capital: %.2f\n", r.InvestableCapital)
	_, _ = p.Fprintf(w, "Mean investment value: %.2f\n", r.MeanInvestmentValue)
	_, _ = p.Fprintf(w, "Worst-case investment value: %.2f\n", r.WorstCaseInvestmentValue)
	_, _ = p.Fprintf(w, "Net cost (mean): %.2f\n", r.NetCostMean)
	_, _ = p.Fprintf(w, "Net cost (worst case): %.2f\n", r.NetCostWorst)
}
