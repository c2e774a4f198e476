package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	FreqMonthly  PaymentFrequency = "monthly"
	FreqBiweekly PaymentFrequency = "biweekly"
	FreqWeekly   PaymentFrequency = "weekly"
)

// PaymentFrequency selects how many payments per year a mortgage schedule
// makes. Unknown values fall back to monthly.
type PaymentFrequency string

func (f PaymentFrequency) PeriodsPerYear() int64 {
	switch f {
	case FreqBiweekly:
		return 26
	case FreqWeekly:
		return 52
	default:
		return 12
	}
}

var (
	twelve = decimal.NewFromInt(12)

	errNoPeriods = errors.New("term must cover at least one period")
)

// CompoundInterest computes P * (1 + rate/n)^(n*years), rounded half-up to
// two places at the end. Intermediate math stays unrounded.
func CompoundInterest(principal, annualRate decimal.Decimal, years, compoundsPerYear int) (decimal.Decimal, error) {
	if principal.IsNegative() || annualRate.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if years < 0 {
		return decimal.Zero, errors.New("years must not be negative")
	}
	if compoundsPerYear < 1 {
		compoundsPerYear = 1
	}
	n := decimal.NewFromInt(int64(compoundsPerYear))
	base := decimal.NewFromInt(1).Add(annualRate.Div(n))
	exponent := decimal.NewFromInt(int64(years * compoundsPerYear))
	return principal.Mul(base.Pow(exponent)).Round(2), nil
}

// LoanPayment computes the fixed monthly amortization payment
// P * r * (1+r)^n / ((1+r)^n - 1) with r = annualRate/12. A zero rate
// degenerates to principal/months so the exponentiated denominator never
// divides by zero.
func LoanPayment(principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	if principal.IsNegative() || annualRate.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if months < 1 {
		return decimal.Zero, errNoPeriods
	}
	return amortizedPayment(principal, annualRate.Div(twelve), int64(months)), nil
}

// MortgagePayment generalizes the amortization formula over the payment
// frequency; the total number of periods is years * periods-per-year.
func MortgagePayment(principal, annualRate decimal.Decimal, years int, freq PaymentFrequency) (decimal.Decimal, error) {
	if principal.IsNegative() || annualRate.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	perYear := freq.PeriodsPerYear()
	periods := int64(years) * perYear
	if periods < 1 {
		return decimal.Zero, errNoPeriods
	}
	return amortizedPayment(principal, annualRate.Div(decimal.NewFromInt(perYear)), periods), nil
}

func amortizedPayment(principal, periodicRate decimal.Decimal, periods int64) decimal.Decimal {
	if periodicRate.IsZero() {
		return principal.Div(decimal.NewFromInt(periods)).Round(2)
	}
	compounded := decimal.NewFromInt(1).Add(periodicRate).Pow(decimal.NewFromInt(periods))
	numerator := periodicRate.Mul(compounded)
	denominator := compounded.Sub(decimal.NewFromInt(1))
	return principal.Mul(numerator.Div(denominator)).Round(2)
}

type (
	// YearSnapshot records the state of an investment at the end of a year.
	YearSnapshot struct {
		Year             int
		Value            decimal.Decimal
		TotalContributed decimal.Decimal
		TotalGrowth      decimal.Decimal
	}

	// InvestmentProjection is the result of a month-by-month growth
	// simulation with recurring contributions.
	InvestmentProjection struct {
		FinalValue       decimal.Decimal
		TotalContributed decimal.Decimal
		TotalGrowth      decimal.Decimal
		YearlySnapshots  []YearSnapshot
	}
)

// InvestmentGrowth simulates monthly compounding of annualRate/12 applied to
// the running balance before each new contribution, snapshotting at every
// 12th month. The contribution changes the compounding base every period, so
// this is an explicit loop rather than a closed form.
func InvestmentGrowth(initial, monthlyContribution, annualRate decimal.Decimal, years int) (InvestmentProjection, error) {
	if initial.IsNegative() || monthlyContribution.IsNegative() || annualRate.IsNegative() {
		return InvestmentProjection{}, ErrNegativeAmount
	}
	if years < 0 {
		return InvestmentProjection{}, errors.New("years must not be negative")
	}

	monthlyRate := annualRate.Div(twelve)
	value := initial
	contributed := initial
	growth := decimal.Zero

	proj := InvestmentProjection{}
	for month := 1; month <= years*12; month++ {
		monthGrowth := value.Mul(monthlyRate)
		value = value.Add(monthGrowth).Add(monthlyContribution)
		contributed = contributed.Add(monthlyContribution)
		growth = growth.Add(monthGrowth)

		if month%12 == 0 {
			proj.YearlySnapshots = append(proj.YearlySnapshots, YearSnapshot{
				Year:             month / 12,
				Value:            value.Round(2),
				TotalContributed: contributed.Round(2),
				TotalGrowth:      growth.Round(2),
			})
		}
	}

	proj.FinalValue = value.Round(2)
	proj.TotalContributed = contributed.Round(2)
	proj.TotalGrowth = growth.Round(2)
	return proj, nil
}
