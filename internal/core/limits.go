package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentSpending sums the owner's transactions for the limit's category
// inside the period window containing now. It is always recomputed from the
// live transaction set; nothing is cached, so a correcting edit or delete is
// reflected immediately.
func CurrentSpending(limit SpendingLimit, txs []Transaction, now time.Time) (decimal.Decimal, error) {
	start, end, err := ResolveRange(limit.Period, now)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, t := range txs {
		if t.UserID != limit.UserID || !t.Category.Equal(limit.Category) {
			continue
		}
		if t.InRange(start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// IsExceeded reports whether current spending is strictly greater than the
// limit's threshold.
func IsExceeded(limit SpendingLimit, txs []Transaction, now time.Time) (bool, error) {
	spent, err := CurrentSpending(limit, txs, now)
	if err != nil {
		return false, err
	}
	return spent.GreaterThan(limit.Threshold), nil
}
