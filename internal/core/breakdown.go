package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// BreakdownItem is one category's share of a period total.
	BreakdownItem struct {
		Category   Category
		Amount     decimal.Decimal
		Percentage float64
	}

	// CategoryBreakdown is the per-category split of income or expenses
	// within one period window, sorted descending by amount.
	CategoryBreakdown struct {
		Type  CategoryType
		Start time.Time
		End   time.Time
		Total decimal.Decimal
		Items []BreakdownItem
	}
)

// Breakdown groups the matching transactions by category identity and
// computes each category's total and percentage of the window total.
// Categories with no matching transaction do not appear. Equal amounts keep
// their first-transaction order (stable sort).
func Breakdown(txs []Transaction, ct CategoryType, p Period, ref time.Time) (CategoryBreakdown, error) {
	if err := ct.Validate(); err != nil {
		return CategoryBreakdown{}, err
	}
	start, end, err := ResolveRange(p, ref)
	if err != nil {
		return CategoryBreakdown{}, err
	}

	total := decimal.Zero
	sums := make(map[int64]decimal.Decimal)
	var order []Category
	for _, t := range txs {
		if t.Category.Type != ct || !t.InRange(start, end) {
			continue
		}
		if _, seen := sums[t.Category.ID]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category.ID] = sums[t.Category.ID].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	b := CategoryBreakdown{Type: ct, Start: start, End: end, Total: total}
	for _, c := range order {
		item := BreakdownItem{Category: c, Amount: sums[c.ID]}
		if total.IsPositive() {
			item.Percentage = item.Amount.Div(total).Mul(hundred).InexactFloat64()
		}
		b.Items = append(b.Items, item)
	}
	sort.SliceStable(b.Items, func(i, j int) bool {
		return b.Items[i].Amount.GreaterThan(b.Items[j].Amount)
	})
	return b, nil
}
