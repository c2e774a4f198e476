package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds income and expense totals for one period window.
type Summary struct {
	Period     Period
	Start      time.Time
	End        time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	NetSavings decimal.Decimal
	// SavingsRate is net savings as a percentage of income, 0 whenever
	// income is zero. Percentages convert to float only at this final step;
	// all summation stays in fixed-point decimal.
	SavingsRate float64
}

// Summarize totals the transactions that fall inside the resolved period
// window, bucketed by category type. Totals are zero decimals, never unset,
// when nothing matches. The input slice is not mutated.
func Summarize(txs []Transaction, p Period, ref time.Time) (Summary, error) {
	start, end, err := ResolveRange(p, ref)
	if err != nil {
		return Summary{}, err
	}

	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txs {
		if !t.InRange(start, end) {
			continue
		}
		switch t.Category.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}

	net := income.Sub(expense)
	s := Summary{
		Period:     p,
		Start:      start,
		End:        end,
		Income:     income,
		Expense:    expense,
		NetSavings: net,
	}
	if income.IsPositive() {
		s.SavingsRate = net.Div(income).Mul(hundred).InexactFloat64()
	}
	return s, nil
}
