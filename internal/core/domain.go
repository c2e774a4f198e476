package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

type (
	// CategoryType is the polarity of a category. A transaction's amount is
	// always positive; the category type decides which aggregate bucket it
	// falls into.
	CategoryType string

	Category struct {
		ID   int64
		Name string
		Type CategoryType
		Icon string
	}

	// Transaction is a single dated ledger entry. Amount is always positive;
	// Recurring is informational only and never auto-applied.
	Transaction struct {
		ID          int64
		UserID      int64
		Category    Category
		Amount      decimal.Decimal
		Description string
		Date        time.Time
		Recurring   bool
	}

	// SpendingLimit caps spending for one expense category over a recurring
	// window. Current spending and the exceeded flag are derived on read,
	// never stored.
	SpendingLimit struct {
		ID        int64
		UserID    int64
		Category  Category
		Threshold decimal.Decimal
		Period    Period
		StartDate time.Time
	}

	// SavingGoal accumulates deposits toward a target amount by a target date.
	SavingGoal struct {
		ID         int64
		UserID     int64
		Name       string
		Target     decimal.Decimal
		Current    decimal.Decimal
		TargetDate time.Time
	}

	// PurchaseGoal fires a one-shot notification once the price becomes a
	// small enough share of the owner's balance.
	PurchaseGoal struct {
		ID             int64
		UserID         int64
		Name           string
		Price          decimal.Decimal
		TriggerPercent decimal.Decimal
		Notified       bool
	}
)

var (
	ErrNegativeAmount      = errors.New("amount must be positive")
	ErrEmptyName           = errors.New("empty name")
	ErrUnknownCategoryType = errors.New("unknown category type")
	ErrNotExpenseCategory  = errors.New("limit category must be an expense category")
	ErrPastTargetDate      = errors.New("target date must be today or later")
	ErrTriggerOutOfRange   = errors.New("trigger percentage must be between 0 and 100")
)

// Day returns t truncated to its calendar date in UTC. The engine works in
// whole days; time-of-day never participates in range comparisons.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (ct CategoryType) Validate() error {
	switch ct {
	case Income, Expense:
		return nil
	}
	return ErrUnknownCategoryType
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Type.Validate()
}

// Equal reports category identity. Two categories with the same name but
// different types are distinct rows and never compare equal.
func (c Category) Equal(other Category) bool {
	return c.ID == other.ID
}

func (t Transaction) Validate() error {
	if err := t.Category.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return ErrNegativeAmount
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// InRange reports whether the transaction's date falls within [start, end],
// both endpoints inclusive, comparing calendar dates only.
func (t Transaction) InRange(start, end time.Time) bool {
	d := Day(t.Date)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

func (l SpendingLimit) Validate() error {
	if err := l.Category.Validate(); err != nil {
		return err
	}
	if l.Category.Type != Expense {
		return ErrNotExpenseCategory
	}
	if !l.Threshold.IsPositive() {
		return ErrNegativeAmount
	}
	switch l.Period {
	case Daily, Weekly, Monthly:
		return nil
	}
	return ErrInvalidPeriod
}

// Validate checks a saving goal at creation time. The target date must not be
// in the past relative to now.
func (g SavingGoal) Validate(now time.Time) error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Target.IsPositive() {
		return ErrNegativeAmount
	}
	if g.Current.IsNegative() {
		return ErrNegativeAmount
	}
	if Day(g.TargetDate).Before(Day(now)) {
		return ErrPastTargetDate
	}
	return nil
}

// Progress returns the funded share of the goal as a percentage. It may
// exceed 100 when the goal is over-funded; a zero target yields 0.
func (g SavingGoal) Progress() float64 {
	if !g.Target.IsPositive() {
		return 0
	}
	return g.Current.Div(g.Target).Mul(hundred).InexactFloat64()
}

func (g PurchaseGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Price.IsPositive() {
		return ErrNegativeAmount
	}
	if g.TriggerPercent.IsNegative() || g.TriggerPercent.GreaterThan(hundred) {
		return ErrTriggerOutOfRange
	}
	return nil
}

var hundred = decimal.NewFromInt(100)
