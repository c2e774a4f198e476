package core

import "github.com/shopspring/decimal"

// CanPurchase reports whether the goal's price, as a percentage of the
// current balance, is at or below the trigger percentage. A zero or negative
// balance yields false, never an error; the predicate is pure and stays
// reusable for display regardless of the notified flag.
func CanPurchase(goal PurchaseGoal, balance decimal.Decimal) bool {
	if !balance.IsPositive() {
		return false
	}
	share := goal.Price.Div(balance).Mul(hundred)
	return share.LessThanOrEqual(goal.TriggerPercent)
}

// MarkNotified performs the single not-notified to notified transition and
// reports whether it fired. The flag is sticky: once set it never reverts,
// so at most one notification is ever produced per goal.
func (g *PurchaseGoal) MarkNotified() bool {
	if g.Notified {
		return false
	}
	g.Notified = true
	return true
}
