package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// TrendPoint is one month's figures within a trend series. MonthStart is
	// the resolved first day of the month so callers can apply their own
	// label formatting or locale.
	TrendPoint struct {
		MonthStart time.Time
		Income     decimal.Decimal
		Expense    decimal.Decimal
		NetSavings decimal.Decimal
	}

	// TrendSeries is a consecutive-month income/expense series, oldest first.
	TrendSeries struct {
		Points []TrendPoint
	}
)

// Label is the short English month abbreviation for charting.
func (p TrendPoint) Label() string {
	return p.MonthStart.Format("Jan")
}

// BuildTrend aggregates the given number of consecutive calendar months
// ending at ref's month, oldest first. Month arithmetic rolls over year
// boundaries going backwards.
func BuildTrend(txs []Transaction, months int, ref time.Time) (TrendSeries, error) {
	if months < 1 {
		return TrendSeries{}, errors.New("trend needs at least one month")
	}

	// Anchor on the first of the month before stepping back: subtracting
	// months from day 29-31 would normalize into the wrong month.
	anchor := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)

	var series TrendSeries
	for i := months - 1; i >= 0; i-- {
		sum, err := Summarize(txs, Monthly, anchor.AddDate(0, -i, 0))
		if err != nil {
			return TrendSeries{}, err
		}
		series.Points = append(series.Points, TrendPoint{
			MonthStart: sum.Start,
			Income:     sum.Income,
			Expense:    sum.Expense,
			NetSavings: sum.NetSavings,
		})
	}
	return series, nil
}

// Labels returns the month labels for charting, oldest first.
func (s TrendSeries) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label()
	}
	return out
}

// IncomeSeries returns each month's income total, oldest first.
func (s TrendSeries) IncomeSeries() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Income
	}
	return out
}

// ExpenseSeries returns each month's expense total, oldest first.
func (s TrendSeries) ExpenseSeries() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Expense
	}
	return out
}

// NetSavingsSeries returns each month's net savings, oldest first.
func (s TrendSeries) NetSavingsSeries() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.NetSavings
	}
	return out
}
