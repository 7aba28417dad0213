// Package loans provides fixed-rate loan amortization calculations.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-grid/pkg/constants"
)

// Sentinel errors for invalid amortization inputs. Callers match with
// errors.Is.
var (
	// ErrInvalidPrincipal indicates a negative loan principal.
	ErrInvalidPrincipal = errors.New("principal must be non-negative")

	// ErrInvalidRate indicates a negative annual interest rate.
	ErrInvalidRate = errors.New("interest rate must be non-negative")

	// ErrInvalidTerm indicates a non-positive loan term.
	ErrInvalidTerm = errors.New("loan term must be positive")
)

// MonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. annualRate is a ratio (0.038 = 3.8%).
// A zero rate degenerates to straight principal division; the annuity
// formula has a removable singularity there.
func MonthlyPayment(principal, annualRate float64, years int) (float64, error) {
	if err := validate(principal, annualRate, years); err != nil {
		return 0, err
	}

	termMonths := years * constants.MonthsPerYear
	if annualRate == 0 {
		return principal / float64(termMonths), nil
	}

	periodicRate := annualRate / constants.MonthsPerYear
	power := math.Pow(1.00+periodicRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicRate / discountFactor, nil
}

// TotalRepaid calculates the total nominal amount repaid over the full
// term: the monthly payment times the number of payments.
func TotalRepaid(principal, annualRate float64, years int) (float64, error) {
	payment, err := MonthlyPayment(principal, annualRate, years)
	if err != nil {
		return 0, err
	}
	return payment * float64(years) * constants.MonthsPerYear, nil
}

func validate(principal, annualRate float64, years int) error {
	if principal < 0 {
		return fmt.Errorf("principal %.2f: %w", principal, ErrInvalidPrincipal)
	}
	if annualRate < 0 {
		return fmt.Errorf("annual rate %f: %w", annualRate, ErrInvalidRate)
	}
	if years <= 0 {
		return fmt.Errorf("term %d years: %w", years, ErrInvalidTerm)
	}
	return nil
}
