package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/cache"
	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/storage"
)

// ReportStore is the read-only persistence surface reports need.
type ReportStore interface {
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error)
}

// Dashboard is the landing view: live balance, the current month's
// summary, its expense breakdown, and the latest entries.
type Dashboard struct {
	Balance   decimal.Decimal
	Month     core.Summary
	Breakdown core.CategoryBreakdown
	Recent    []core.Transaction
}

// DailyPoint is one day of an arbitrary-range report.
type DailyPoint struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// RangeReport aggregates an arbitrary inclusive date window, with
// per-category expense shares and a day-by-day series for charting.
type RangeReport struct {
	Start      time.Time
	End        time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	NetSavings decimal.Decimal
	ByCategory []core.BreakdownItem
	Daily      []DailyPoint
}

const recentCount = 5

type ReportService struct {
	store     ReportStore
	dashboard *cache.LRUCache[Dashboard]
	logger    *log.Logger
}

func NewReportService(store ReportStore, dashboardCache *cache.LRUCache[Dashboard], logger *log.Logger) *ReportService {
	return &ReportService{
		store:     store,
		dashboard: dashboardCache,
		logger:    logger.WithComponent(log.ComponentReports),
	}
}

// Invalidate drops a user's cached dashboard. Ledger writes call this so
// the next dashboard read reflects the new balance immediately.
func (s *ReportService) Invalidate(userID int64) {
	if s.dashboard != nil {
		s.dashboard.Delete(dashboardKey(userID))
	}
}

func dashboardKey(userID int64) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func sameCalendarMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (s *ReportService) Dashboard(ctx context.Context, userID int64, now time.Time) (Dashboard, error) {
	// The cache entry is keyed per user, so only the current calendar
	// month may live in it. A historical reference date is computed
	// fresh every time; otherwise it would be served to later
	// no-date requests until the entry expires.
	key := dashboardKey(userID)
	cacheable := s.dashboard != nil && sameCalendarMonth(now, time.Now().UTC())
	if cacheable {
		if d, ok := s.dashboard.Get(key); ok {
			s.logger.DebugContext(ctx, "Dashboard served from cache", "user_id", userID)
			return d, nil
		}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("get user: %w", err)
	}

	start, end, err := core.ResolveRange(core.Monthly, now)
	if err != nil {
		return Dashboard{}, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}

	summary, err := core.Summarize(txs, core.Monthly, now)
	if err != nil {
		return Dashboard{}, err
	}

	breakdown, err := core.Breakdown(txs, core.Expense, core.Monthly, now)
	if err != nil {
		return Dashboard{}, err
	}

	recent, err := s.store.RecentTransactions(ctx, userID, recentCount)
	if err != nil {
		return Dashboard{}, fmt.Errorf("recent transactions: %w", err)
	}

	d := Dashboard{
		Balance:   user.Balance,
		Month:     summary,
		Breakdown: breakdown,
		Recent:    recent,
	}

	if cacheable {
		s.dashboard.Set(key, d)
	}
	return d, nil
}

// Summary aggregates one named period around the reference date.
func (s *ReportService) Summary(ctx context.Context, userID int64, p core.Period, ref time.Time) (core.Summary, error) {
	start, end, err := core.ResolveRange(p, ref)
	if err != nil {
		return core.Summary{}, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	return core.Summarize(txs, p, ref)
}

// Breakdown groups one period's transactions of the given category type.
func (s *ReportService) Breakdown(ctx context.Context, userID int64, ct core.CategoryType, p core.Period, ref time.Time) (core.CategoryBreakdown, error) {
	start, end, err := core.ResolveRange(p, ref)
	if err != nil {
		return core.CategoryBreakdown{}, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return core.CategoryBreakdown{}, fmt.Errorf("list transactions: %w", err)
	}

	return core.Breakdown(txs, ct, p, ref)
}

// Trend builds the month-by-month series ending at the reference month.
func (s *ReportService) Trend(ctx context.Context, userID int64, months int, ref time.Time) (core.TrendSeries, error) {
	if months < 1 {
		return core.TrendSeries{}, core.ErrInvalidPeriod
	}

	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	txs, err := s.store.ListTransactions(ctx, userID, from, core.Day(ref).AddDate(0, 1, 0))
	if err != nil {
		return core.TrendSeries{}, fmt.Errorf("list transactions: %w", err)
	}

	return core.BuildTrend(txs, months, ref)
}

// Range aggregates an arbitrary inclusive date window.
func (s *ReportService) Range(ctx context.Context, userID int64, from, to time.Time) (RangeReport, error) {
	from, to = core.Day(from), core.Day(to)
	if to.Before(from) {
		return RangeReport{}, fmt.Errorf("range end %s before start %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	txs, err := s.store.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return RangeReport{}, fmt.Errorf("list transactions: %w", err)
	}

	r := RangeReport{
		Start:   from,
		End:     to,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}

	type catAgg struct {
		category core.Category
		amount   decimal.Decimal
	}
	byCat := map[int64]*catAgg{}
	var catOrder []int64
	byDay := map[time.Time]*DailyPoint{}

	for _, t := range txs {
		day := core.Day(t.Date)
		dp, ok := byDay[day]
		if !ok {
			dp = &DailyPoint{Date: day, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[day] = dp
		}

		switch t.Category.Type {
		case core.Income:
			r.Income = r.Income.Add(t.Amount)
			dp.Income = dp.Income.Add(t.Amount)
		case core.Expense:
			r.Expense = r.Expense.Add(t.Amount)
			dp.Expense = dp.Expense.Add(t.Amount)

			agg, ok := byCat[t.Category.ID]
			if !ok {
				agg = &catAgg{category: t.Category, amount: decimal.Zero}
				byCat[t.Category.ID] = agg
				catOrder = append(catOrder, t.Category.ID)
			}
			agg.amount = agg.amount.Add(t.Amount)
		}
	}

	r.NetSavings = r.Income.Sub(r.Expense)

	for _, id := range catOrder {
		agg := byCat[id]
		if agg.amount.IsZero() {
			continue
		}
		item := core.BreakdownItem{Category: agg.category, Amount: agg.amount}
		if r.Expense.IsPositive() {
			item.Percentage = agg.amount.Div(r.Expense).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		r.ByCategory = append(r.ByCategory, item)
	}
	sort.SliceStable(r.ByCategory, func(i, j int) bool {
		return r.ByCategory[i].Amount.GreaterThan(r.ByCategory[j].Amount)
	})

	for _, dp := range byDay {
		r.Daily = append(r.Daily, *dp)
	}
	sort.Slice(r.Daily, func(i, j int) bool { return r.Daily[i].Date.Before(r.Daily[j].Date) })

	return r, nil
}
