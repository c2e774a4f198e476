package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/amqp"
	"github.com/phisoli/parasekreterim/internal/cache"
	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/storage"
)

// fakeStore is an in-memory stand-in for the SQLite repository.
type fakeStore struct {
	user          storage.User
	categories    []core.Category
	txs           []core.Transaction
	limits        []core.SpendingLimit
	savingGoals   []core.SavingGoal
	purchaseGoals []core.PurchaseGoal

	nextID    int64
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		user: storage.User{
			ID:      1,
			Email:   "ayse@example.com",
			Balance: decimal.Zero,
		},
		nextID: 100,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (storage.User, error) {
	if id != f.user.ID {
		return storage.User{}, storage.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeStore) GetOrCreateCategory(_ context.Context, name string, ct core.CategoryType, icon string) (core.Category, error) {
	for _, c := range f.categories {
		if c.Name == name && c.Type == ct {
			return c, nil
		}
	}
	c := core.Category{ID: f.id(), Name: name, Type: ct, Icon: icon}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (core.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, storage.ErrNotFound
}

func (f *fakeStore) ListCategories(_ context.Context, ct core.CategoryType) ([]core.Category, error) {
	var out []core.Category
	for _, c := range f.categories {
		if ct == "" || c.Type == ct {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) RenameCategory(_ context.Context, id int64, name string) (core.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Name = name
			return f.categories[i], nil
		}
	}
	return core.Category{}, storage.ErrNotFound
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64) error {
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) applyDelta(t core.Transaction, sign int64) {
	delta := t.Amount
	if t.Category.Type == core.Expense {
		delta = delta.Neg()
	}
	f.user.Balance = f.user.Balance.Add(delta.Mul(decimal.NewFromInt(sign)))
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = f.id()
	f.txs = append(f.txs, t)
	f.applyDelta(t, 1)
	return t, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	for i, old := range f.txs {
		if old.ID == t.ID && old.UserID == t.UserID {
			f.applyDelta(old, -1)
			f.applyDelta(t, 1)
			f.txs[i] = t
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	for i, old := range f.txs {
		if old.ID == id && old.UserID == userID {
			f.applyDelta(old, -1)
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	for _, t := range f.txs {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	f.listCalls++
	var out []core.Transaction
	for _, t := range f.txs {
		if t.UserID != userID {
			continue
		}
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) RecentTransactions(_ context.Context, userID int64, n int) ([]core.Transaction, error) {
	var out []core.Transaction
	for i := len(f.txs) - 1; i >= 0 && len(out) < n; i-- {
		if f.txs[i].UserID == userID {
			out = append(out, f.txs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateLimit(_ context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	l.ID = f.id()
	f.limits = append(f.limits, l)
	return l, nil
}

func (f *fakeStore) UpdateLimit(_ context.Context, l core.SpendingLimit) error {
	for i := range f.limits {
		if f.limits[i].ID == l.ID && f.limits[i].UserID == l.UserID {
			f.limits[i] = l
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteLimit(_ context.Context, userID, id int64) error {
	for i, l := range f.limits {
		if l.ID == id && l.UserID == userID {
			f.limits = append(f.limits[:i], f.limits[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListLimits(_ context.Context, userID int64) ([]core.SpendingLimit, error) {
	var out []core.SpendingLimit
	for _, l := range f.limits {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLimitsForCategory(_ context.Context, userID, categoryID int64) ([]core.SpendingLimit, error) {
	var out []core.SpendingLimit
	for _, l := range f.limits {
		if l.UserID == userID && l.Category.ID == categoryID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSavingGoal(_ context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	g.ID = f.id()
	f.savingGoals = append(f.savingGoals, g)
	return g, nil
}

func (f *fakeStore) GetSavingGoal(_ context.Context, userID, id int64) (core.SavingGoal, error) {
	for _, g := range f.savingGoals {
		if g.ID == id && g.UserID == userID {
			return g, nil
		}
	}
	return core.SavingGoal{}, storage.ErrNotFound
}

func (f *fakeStore) ListSavingGoals(_ context.Context, userID int64) ([]core.SavingGoal, error) {
	var out []core.SavingGoal
	for _, g := range f.savingGoals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSavingGoal(_ context.Context, userID, id int64) error {
	for i, g := range f.savingGoals {
		if g.ID == id && g.UserID == userID {
			f.savingGoals = append(f.savingGoals[:i], f.savingGoals[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DepositToSavingGoal(_ context.Context, userID, goalID int64, amount decimal.Decimal) (core.SavingGoal, error) {
	for i, g := range f.savingGoals {
		if g.ID == goalID && g.UserID == userID {
			f.savingGoals[i].Current = g.Current.Add(amount)
			f.user.Balance = f.user.Balance.Sub(amount)
			return f.savingGoals[i], nil
		}
	}
	return core.SavingGoal{}, storage.ErrNotFound
}

func (f *fakeStore) CreatePurchaseGoal(_ context.Context, g core.PurchaseGoal) (core.PurchaseGoal, error) {
	g.ID = f.id()
	f.purchaseGoals = append(f.purchaseGoals, g)
	return g, nil
}

func (f *fakeStore) ListPurchaseGoals(_ context.Context, userID int64) ([]core.PurchaseGoal, error) {
	var out []core.PurchaseGoal
	for _, g := range f.purchaseGoals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePurchaseGoal(_ context.Context, userID, id int64) error {
	for i, g := range f.purchaseGoals {
		if g.ID == id && g.UserID == userID {
			f.purchaseGoals = append(f.purchaseGoals[:i], f.purchaseGoals[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) MarkPurchaseGoalNotified(_ context.Context, userID, id int64) (bool, error) {
	for i, g := range f.purchaseGoals {
		if g.ID == id && g.UserID == userID {
			if g.Notified {
				return false, nil
			}
			f.purchaseGoals[i].Notified = true
			return true, nil
		}
	}
	return false, storage.ErrNotFound
}

type fakePublisher struct {
	messages []*amqp.NotificationMessage
}

func (p *fakePublisher) PublishNotification(_ context.Context, msg *amqp.NotificationMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func testLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Handler = slog.NewTextHandler(io.Discard, nil)
	return log.New(cfg)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecordAdjustsBalance(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil, testLogger())

	_, err := svc.Record(context.Background(), TransactionInput{
		UserID:       1,
		CategoryName: "Salary",
		CategoryType: core.Income,
		Amount:       decimal.RequireFromString("2500"),
		Date:         day(2025, time.March, 1),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	_, err = svc.Record(context.Background(), TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: core.Expense,
		Amount:       decimal.RequireFromString("300.50"),
		Date:         day(2025, time.March, 2),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	want := decimal.RequireFromString("2199.50")
	if !store.user.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s", store.user.Balance, want)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil, testLogger())

	_, err := svc.Record(context.Background(), TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: core.Expense,
		Amount:       decimal.RequireFromString("-5"),
		Date:         day(2025, time.March, 2),
	})
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Errorf("Record() negative amount error = %v, want ErrNegativeAmount", err)
	}

	_, err = svc.Record(context.Background(), TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: "savings",
		Amount:       decimal.RequireFromString("5"),
		Date:         day(2025, time.March, 2),
	})
	if !errors.Is(err, core.ErrUnknownCategoryType) {
		t.Errorf("Record() bad type error = %v, want ErrUnknownCategoryType", err)
	}

	if len(store.txs) != 0 {
		t.Errorf("store has %d transactions, want 0", len(store.txs))
	}
}

func TestRecordPublishesLimitExceeded(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub, testLogger())
	ctx := context.Background()

	cat, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.limits = append(store.limits, core.SpendingLimit{
		ID:        1,
		UserID:    1,
		Category:  cat,
		Threshold: decimal.RequireFromString("500"),
		Period:    core.Monthly,
		StartDate: day(2025, time.January, 1),
	})

	today := core.Day(time.Now())
	if _, err := svc.Record(ctx, TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: core.Expense,
		Amount:       decimal.RequireFromString("600"),
		Date:         today,
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if pub.messages[0].Type != amqp.NotificationLimitExceeded {
		t.Errorf("message type = %s, want %s", pub.messages[0].Type, amqp.NotificationLimitExceeded)
	}
	if pub.messages[0].Email != "ayse@example.com" {
		t.Errorf("message email = %s", pub.messages[0].Email)
	}
}

func TestRecordIncomeSkipsLimitCheck(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub, testLogger())

	if _, err := svc.Record(context.Background(), TransactionInput{
		UserID:       1,
		CategoryName: "Salary",
		CategoryType: core.Income,
		Amount:       decimal.RequireFromString("2500"),
		Date:         core.Day(time.Now()),
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if len(pub.messages) != 0 {
		t.Errorf("published %d messages, want 0", len(pub.messages))
	}
}

func TestEditReversesOldEffect(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil, testLogger())
	ctx := context.Background()

	rec, err := svc.Record(ctx, TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: core.Expense,
		Amount:       decimal.RequireFromString("100"),
		Date:         day(2025, time.March, 2),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if _, err := svc.Edit(ctx, rec.ID, TransactionInput{
		UserID:       1,
		CategoryName: "Groceries",
		CategoryType: core.Expense,
		Amount:       decimal.RequireFromString("40"),
		Date:         day(2025, time.March, 2),
	}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	want := decimal.RequireFromString("-40")
	if !store.user.Balance.Equal(want) {
		t.Errorf("balance after edit = %s, want %s", store.user.Balance, want)
	}
}

func TestDashboardCache(t *testing.T) {
	store := newFakeStore()
	dc := cache.NewLRUCache[Dashboard](10, time.Minute)
	svc := NewReportService(store, dc, testLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	cat, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.txs = append(store.txs, core.Transaction{
		ID: 1, UserID: 1, Category: cat,
		Amount: decimal.RequireFromString("100"), Date: core.Day(now),
	})

	d1, err := svc.Dashboard(ctx, 1, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	calls := store.listCalls

	d2, err := svc.Dashboard(ctx, 1, now)
	if err != nil {
		t.Fatalf("Dashboard() second call error = %v", err)
	}
	if store.listCalls != calls {
		t.Error("second Dashboard() hit the store instead of the cache")
	}
	if !d1.Month.Expense.Equal(d2.Month.Expense) {
		t.Error("cached dashboard differs from original")
	}

	svc.Invalidate(1)
	if _, err := svc.Dashboard(ctx, 1, now); err != nil {
		t.Fatalf("Dashboard() after invalidate error = %v", err)
	}
	if store.listCalls == calls {
		t.Error("Dashboard() after Invalidate() did not hit the store")
	}
}

func TestDashboardHistoricalMonthNotCached(t *testing.T) {
	store := newFakeStore()
	dc := cache.NewLRUCache[Dashboard](10, time.Minute)
	svc := NewReportService(store, dc, testLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	old := day(2020, time.January, 20)

	cat, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Category: cat, Amount: decimal.RequireFromString("75"), Date: day(2020, time.January, 10)},
		{ID: 2, UserID: 1, Category: cat, Amount: decimal.RequireFromString("40"), Date: core.Day(now)},
	}

	past, err := svc.Dashboard(ctx, 1, old)
	if err != nil {
		t.Fatalf("Dashboard(old) error = %v", err)
	}
	if !past.Month.Expense.Equal(decimal.RequireFromString("75")) {
		t.Errorf("January 2020 expense = %s, want 75", past.Month.Expense)
	}

	current, err := svc.Dashboard(ctx, 1, now)
	if err != nil {
		t.Fatalf("Dashboard(now) error = %v", err)
	}
	if !current.Month.Expense.Equal(decimal.RequireFromString("40")) {
		t.Errorf("current month expense = %s, want 40 (historical view leaked through the cache)", current.Month.Expense)
	}

	// Historical reference dates bypass the cache both ways.
	calls := store.listCalls
	if _, err := svc.Dashboard(ctx, 1, old); err != nil {
		t.Fatalf("Dashboard(old) second call error = %v", err)
	}
	if store.listCalls == calls {
		t.Error("historical Dashboard() was served from cache")
	}
}

func TestDashboardFigures(t *testing.T) {
	store := newFakeStore()
	svc := NewReportService(store, nil, testLogger())
	ctx := context.Background()
	now := day(2025, time.March, 15)

	salary, _ := store.GetOrCreateCategory(ctx, "Salary", core.Income, "")
	market, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Category: salary, Amount: decimal.RequireFromString("2000"), Date: day(2025, time.March, 1)},
		{ID: 2, UserID: 1, Category: market, Amount: decimal.RequireFromString("500"), Date: day(2025, time.March, 10)},
		{ID: 3, UserID: 1, Category: market, Amount: decimal.RequireFromString("999"), Date: day(2025, time.February, 10)},
	}
	store.user.Balance = decimal.RequireFromString("501")

	d, err := svc.Dashboard(ctx, 1, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if !d.Balance.Equal(decimal.RequireFromString("501")) {
		t.Errorf("balance = %s, want 501", d.Balance)
	}
	if !d.Month.Income.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("month income = %s, want 2000", d.Month.Income)
	}
	if !d.Month.Expense.Equal(decimal.RequireFromString("500")) {
		t.Errorf("month expense = %s, want 500 (February entry must not leak in)", d.Month.Expense)
	}
	if len(d.Breakdown.Items) != 1 {
		t.Fatalf("breakdown has %d items, want 1", len(d.Breakdown.Items))
	}
}

func TestRangeReport(t *testing.T) {
	store := newFakeStore()
	svc := NewReportService(store, nil, testLogger())
	ctx := context.Background()

	salary, _ := store.GetOrCreateCategory(ctx, "Salary", core.Income, "")
	market, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	rent, _ := store.GetOrCreateCategory(ctx, "Rent", core.Expense, "")
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Category: salary, Amount: decimal.RequireFromString("1000"), Date: day(2025, time.March, 1)},
		{ID: 2, UserID: 1, Category: market, Amount: decimal.RequireFromString("150"), Date: day(2025, time.March, 1)},
		{ID: 3, UserID: 1, Category: rent, Amount: decimal.RequireFromString("450"), Date: day(2025, time.March, 3)},
		{ID: 4, UserID: 1, Category: market, Amount: decimal.RequireFromString("50"), Date: day(2025, time.April, 1)},
	}

	r, err := svc.Range(ctx, 1, day(2025, time.March, 1), day(2025, time.March, 31))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}

	if !r.Income.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("income = %s, want 1000", r.Income)
	}
	if !r.Expense.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expense = %s, want 600", r.Expense)
	}
	if !r.NetSavings.Equal(decimal.RequireFromString("400")) {
		t.Errorf("net = %s, want 400", r.NetSavings)
	}

	if len(r.ByCategory) != 2 {
		t.Fatalf("by-category has %d items, want 2", len(r.ByCategory))
	}
	if r.ByCategory[0].Category.Name != "Rent" {
		t.Errorf("top category = %s, want Rent", r.ByCategory[0].Category.Name)
	}

	if len(r.Daily) != 2 {
		t.Fatalf("daily has %d points, want 2", len(r.Daily))
	}
	if !r.Daily[0].Date.Equal(day(2025, time.March, 1)) {
		t.Errorf("first daily point = %s, want March 1", r.Daily[0].Date)
	}
	if !r.Daily[0].Expense.Equal(decimal.RequireFromString("150")) {
		t.Errorf("March 1 expense = %s, want 150", r.Daily[0].Expense)
	}
}

func TestRangeReportRejectsInvertedWindow(t *testing.T) {
	svc := NewReportService(newFakeStore(), nil, testLogger())

	_, err := svc.Range(context.Background(), 1, day(2025, time.March, 31), day(2025, time.March, 1))
	if err == nil {
		t.Fatal("Range() with inverted window succeeded")
	}
}

func TestDepositRejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	svc := NewGoalService(store, nil, testLogger())

	_, err := svc.Deposit(context.Background(), 1, 5, decimal.Zero)
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Errorf("Deposit(0) error = %v, want ErrNegativeAmount", err)
	}
}

func TestDepositMovesBalanceIntoGoal(t *testing.T) {
	store := newFakeStore()
	store.user.Balance = decimal.RequireFromString("1000")
	store.savingGoals = []core.SavingGoal{{
		ID: 5, UserID: 1, Name: "Vacation",
		Target:     decimal.RequireFromString("2000"),
		Current:    decimal.Zero,
		TargetDate: day(2030, time.June, 1),
	}}
	svc := NewGoalService(store, nil, testLogger())

	g, err := svc.Deposit(context.Background(), 1, 5, decimal.RequireFromString("250"))
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}

	if !g.Current.Equal(decimal.RequireFromString("250")) {
		t.Errorf("goal current = %s, want 250", g.Current)
	}
	if !store.user.Balance.Equal(decimal.RequireFromString("750")) {
		t.Errorf("balance = %s, want 750", store.user.Balance)
	}
}

func TestEvaluatePurchaseGoalsOneShot(t *testing.T) {
	store := newFakeStore()
	store.user.Balance = decimal.RequireFromString("10000")
	store.purchaseGoals = []core.PurchaseGoal{{
		ID: 7, UserID: 1, Name: "Laptop",
		Price:          decimal.RequireFromString("1500"),
		TriggerPercent: decimal.RequireFromString("20"),
	}}
	pub := &fakePublisher{}
	svc := NewGoalService(store, pub, testLogger())
	ctx := context.Background()

	svc.EvaluatePurchaseGoals(ctx, 1)
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if pub.messages[0].Type != amqp.NotificationPurchaseReady {
		t.Errorf("message type = %s", pub.messages[0].Type)
	}

	// Re-evaluating must not fire again.
	svc.EvaluatePurchaseGoals(ctx, 1)
	if len(pub.messages) != 1 {
		t.Errorf("published %d messages after second pass, want 1", len(pub.messages))
	}
}

func TestEvaluatePurchaseGoalsBelowTrigger(t *testing.T) {
	store := newFakeStore()
	store.user.Balance = decimal.RequireFromString("2000")
	store.purchaseGoals = []core.PurchaseGoal{{
		ID: 7, UserID: 1, Name: "Laptop",
		Price:          decimal.RequireFromString("1500"),
		TriggerPercent: decimal.RequireFromString("20"),
	}}
	pub := &fakePublisher{}
	svc := NewGoalService(store, pub, testLogger())

	// 1500 is 75% of the balance, far above the 20% trigger.
	svc.EvaluatePurchaseGoals(context.Background(), 1)
	if len(pub.messages) != 0 {
		t.Errorf("published %d messages, want 0", len(pub.messages))
	}
}

func TestLimitStatuses(t *testing.T) {
	store := newFakeStore()
	svc := NewGoalService(store, nil, testLogger())
	ctx := context.Background()
	now := day(2025, time.March, 15)

	cat, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.limits = []core.SpendingLimit{{
		ID: 1, UserID: 1, Category: cat,
		Threshold: decimal.RequireFromString("500"),
		Period:    core.Monthly,
		StartDate: day(2025, time.January, 1),
	}}
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Category: cat, Amount: decimal.RequireFromString("300"), Date: day(2025, time.March, 2)},
		{ID: 2, UserID: 1, Category: cat, Amount: decimal.RequireFromString("300"), Date: day(2025, time.March, 10)},
	}

	statuses, err := svc.LimitStatuses(ctx, 1, now)
	if err != nil {
		t.Fatalf("LimitStatuses() error = %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	if !statuses[0].Spent.Equal(decimal.RequireFromString("600")) {
		t.Errorf("spent = %s, want 600", statuses[0].Spent)
	}
	if !statuses[0].Exceeded {
		t.Error("limit not flagged exceeded")
	}
}

func TestUpdateLimit(t *testing.T) {
	store := newFakeStore()
	svc := NewGoalService(store, nil, testLogger())
	ctx := context.Background()

	cat, _ := store.GetOrCreateCategory(ctx, "Groceries", core.Expense, "")
	store.limits = []core.SpendingLimit{{
		ID: 1, UserID: 1, Category: cat,
		Threshold: decimal.RequireFromString("500"),
		Period:    core.Monthly,
		StartDate: day(2025, time.January, 1),
	}}

	l, err := svc.UpdateLimit(ctx, 1, 1, cat.ID,
		decimal.RequireFromString("800"), core.Weekly, day(2025, time.February, 1))
	if err != nil {
		t.Fatalf("UpdateLimit() error = %v", err)
	}
	if !l.Threshold.Equal(decimal.RequireFromString("800")) || l.Period != core.Weekly {
		t.Errorf("updated limit = %s/%s, want 800/weekly", l.Threshold, l.Period)
	}
	if !store.limits[0].Threshold.Equal(decimal.RequireFromString("800")) {
		t.Errorf("stored threshold = %s, want 800", store.limits[0].Threshold)
	}

	_, err = svc.UpdateLimit(ctx, 1, 1, cat.ID,
		decimal.RequireFromString("800"), core.Period("fortnightly"), day(2025, time.February, 1))
	if !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("UpdateLimit() error = %v, want ErrInvalidPeriod", err)
	}

	_, err = svc.UpdateLimit(ctx, 2, 1, cat.ID,
		decimal.RequireFromString("800"), core.Monthly, day(2025, time.February, 1))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateLimit() for another user's limit error = %v, want ErrNotFound", err)
	}
}

func TestCreateSavingGoalRejectsPastDate(t *testing.T) {
	svc := NewGoalService(newFakeStore(), nil, testLogger())

	_, err := svc.CreateSavingGoal(context.Background(), 1, "Vacation",
		decimal.RequireFromString("2000"), day(2020, time.June, 1))
	if !errors.Is(err, core.ErrPastTargetDate) {
		t.Errorf("CreateSavingGoal() error = %v, want ErrPastTargetDate", err)
	}
}
