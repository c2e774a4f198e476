package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/amqp"
	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/storage"
)

// GoalStore is the persistence surface for limits and goals.
type GoalStore interface {
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	CreateLimit(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error)
	UpdateLimit(ctx context.Context, l core.SpendingLimit) error
	DeleteLimit(ctx context.Context, userID, id int64) error
	ListLimits(ctx context.Context, userID int64) ([]core.SpendingLimit, error)
	CreateSavingGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error)
	GetSavingGoal(ctx context.Context, userID, id int64) (core.SavingGoal, error)
	ListSavingGoals(ctx context.Context, userID int64) ([]core.SavingGoal, error)
	DeleteSavingGoal(ctx context.Context, userID, id int64) error
	DepositToSavingGoal(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (core.SavingGoal, error)
	CreatePurchaseGoal(ctx context.Context, g core.PurchaseGoal) (core.PurchaseGoal, error)
	ListPurchaseGoals(ctx context.Context, userID int64) ([]core.PurchaseGoal, error)
	DeletePurchaseGoal(ctx context.Context, userID, id int64) error
	MarkPurchaseGoalNotified(ctx context.Context, userID, id int64) (bool, error)
}

// LimitStatus pairs a spending limit with its current window spending.
type LimitStatus struct {
	Limit    core.SpendingLimit
	Spent    decimal.Decimal
	Exceeded bool
}

// SavingGoalStatus pairs a saving goal with its progress percentage.
type SavingGoalStatus struct {
	Goal     core.SavingGoal
	Progress float64
}

// PurchaseGoalStatus pairs a purchase goal with its affordability now.
type PurchaseGoalStatus struct {
	Goal       core.PurchaseGoal
	Affordable bool
}

type GoalService struct {
	store     GoalStore
	publisher NotificationPublisher
	logger    *log.Logger
}

func NewGoalService(store GoalStore, publisher NotificationPublisher, logger *log.Logger) *GoalService {
	return &GoalService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentGoals),
	}
}

// CreateLimit validates and stores a spending limit on an expense category.
func (s *GoalService) CreateLimit(ctx context.Context, userID, categoryID int64, threshold decimal.Decimal, period core.Period, start time.Time) (core.SpendingLimit, error) {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("get category: %w", err)
	}

	l := core.SpendingLimit{
		UserID:    userID,
		Category:  cat,
		Threshold: threshold,
		Period:    period,
		StartDate: core.Day(start),
	}
	if err := l.Validate(); err != nil {
		return core.SpendingLimit{}, err
	}

	l, err = s.store.CreateLimit(ctx, l)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("create limit: %w", err)
	}

	s.logger.InfoContext(ctx, "Spending limit created",
		log.FieldOperation, log.OpCreate,
		"limit_id", l.ID,
		"category", cat.Name,
		"threshold", threshold.String(),
		"period", string(period))
	return l, nil
}

// UpdateLimit rebinds an existing limit to a category, threshold,
// period and start date, revalidating the whole limit.
func (s *GoalService) UpdateLimit(ctx context.Context, userID, id, categoryID int64, threshold decimal.Decimal, period core.Period, start time.Time) (core.SpendingLimit, error) {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("get category: %w", err)
	}

	l := core.SpendingLimit{
		ID:        id,
		UserID:    userID,
		Category:  cat,
		Threshold: threshold,
		Period:    period,
		StartDate: core.Day(start),
	}
	if err := l.Validate(); err != nil {
		return core.SpendingLimit{}, err
	}

	if err := s.store.UpdateLimit(ctx, l); err != nil {
		return core.SpendingLimit{}, fmt.Errorf("update limit: %w", err)
	}

	s.logger.InfoContext(ctx, "Spending limit updated",
		log.FieldOperation, log.OpUpdate,
		"limit_id", id,
		"category", cat.Name,
		"threshold", threshold.String(),
		"period", string(period))
	return l, nil
}

func (s *GoalService) DeleteLimit(ctx context.Context, userID, id int64) error {
	return s.store.DeleteLimit(ctx, userID, id)
}

// LimitStatuses computes current-window spending for every limit the
// user has. Spending is recomputed from the ledger on every call.
func (s *GoalService) LimitStatuses(ctx context.Context, userID int64, now time.Time) ([]LimitStatus, error) {
	limits, err := s.store.ListLimits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	if len(limits) == 0 {
		return nil, nil
	}

	txs, err := s.store.ListTransactions(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]LimitStatus, 0, len(limits))
	for _, l := range limits {
		spent, err := core.CurrentSpending(l, txs, now)
		if err != nil {
			return nil, err
		}
		out = append(out, LimitStatus{
			Limit:    l,
			Spent:    spent,
			Exceeded: spent.GreaterThan(l.Threshold),
		})
	}

	return out, nil
}

func (s *GoalService) CreateSavingGoal(ctx context.Context, userID int64, name string, target decimal.Decimal, targetDate time.Time) (core.SavingGoal, error) {
	g := core.SavingGoal{
		UserID:     userID,
		Name:       name,
		Target:     target,
		Current:    decimal.Zero,
		TargetDate: core.Day(targetDate),
	}
	if err := g.Validate(time.Now()); err != nil {
		return core.SavingGoal{}, err
	}

	g, err := s.store.CreateSavingGoal(ctx, g)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("create saving goal: %w", err)
	}

	s.logger.InfoContext(ctx, "Saving goal created",
		log.FieldOperation, log.OpCreate,
		"goal_id", g.ID,
		"target", target.String())
	return g, nil
}

func (s *GoalService) SavingGoals(ctx context.Context, userID int64) ([]SavingGoalStatus, error) {
	goals, err := s.store.ListSavingGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}

	out := make([]SavingGoalStatus, 0, len(goals))
	for _, g := range goals {
		out = append(out, SavingGoalStatus{Goal: g, Progress: g.Progress()})
	}
	return out, nil
}

func (s *GoalService) DeleteSavingGoal(ctx context.Context, userID, id int64) error {
	return s.store.DeleteSavingGoal(ctx, userID, id)
}

// Deposit moves money from the balance into a saving goal. The two
// updates happen in one storage transaction.
func (s *GoalService) Deposit(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (core.SavingGoal, error) {
	if !amount.IsPositive() {
		return core.SavingGoal{}, core.ErrNegativeAmount
	}

	g, err := s.store.DepositToSavingGoal(ctx, userID, goalID, amount)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("deposit: %w", err)
	}

	s.logger.InfoContext(ctx, "Deposit made",
		log.FieldOperation, log.OpDeposit,
		"goal_id", goalID,
		"amount", amount.String(),
		"current", g.Current.String())
	return g, nil
}

func (s *GoalService) CreatePurchaseGoal(ctx context.Context, userID int64, name string, price, triggerPercent decimal.Decimal) (core.PurchaseGoal, error) {
	g := core.PurchaseGoal{
		UserID:         userID,
		Name:           name,
		Price:          price,
		TriggerPercent: triggerPercent,
	}
	if err := g.Validate(); err != nil {
		return core.PurchaseGoal{}, err
	}

	g, err := s.store.CreatePurchaseGoal(ctx, g)
	if err != nil {
		return core.PurchaseGoal{}, fmt.Errorf("create purchase goal: %w", err)
	}

	s.logger.InfoContext(ctx, "Purchase goal created",
		log.FieldOperation, log.OpCreate,
		"goal_id", g.ID,
		"price", price.String())

	// A goal can be affordable the moment it is created.
	s.EvaluatePurchaseGoals(ctx, userID)
	return g, nil
}

func (s *GoalService) PurchaseGoals(ctx context.Context, userID int64) ([]PurchaseGoalStatus, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	goals, err := s.store.ListPurchaseGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchase goals: %w", err)
	}

	out := make([]PurchaseGoalStatus, 0, len(goals))
	for _, g := range goals {
		out = append(out, PurchaseGoalStatus{
			Goal:       g,
			Affordable: core.CanPurchase(g, user.Balance),
		})
	}
	return out, nil
}

func (s *GoalService) DeletePurchaseGoal(ctx context.Context, userID, id int64) error {
	return s.store.DeletePurchaseGoal(ctx, userID, id)
}

// EvaluatePurchaseGoals fires a one-shot notification for every purchase
// goal that just became affordable. Goals already notified stay silent.
func (s *GoalService) EvaluatePurchaseGoals(ctx context.Context, userID int64) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load user for goal evaluation",
			"user_id", userID, "error", err)
		return
	}

	goals, err := s.store.ListPurchaseGoals(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list purchase goals",
			"user_id", userID, "error", err)
		return
	}

	for _, goal := range goals {
		if goal.Notified || !core.CanPurchase(goal, user.Balance) {
			continue
		}

		flipped, err := s.store.MarkPurchaseGoalNotified(ctx, userID, goal.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to mark purchase goal notified",
				"goal_id", goal.ID, "error", err)
			continue
		}
		if !flipped {
			continue
		}

		s.logger.InfoContext(ctx, "Purchase goal within reach",
			log.FieldOperation, log.OpEvaluate,
			"goal_id", goal.ID,
			"goal", goal.Name)

		if s.publisher == nil {
			continue
		}
		msg := amqp.NewNotificationMessage(
			amqp.NotificationPurchaseReady,
			user.ID,
			user.Email,
			fmt.Sprintf("You can now afford %s", goal.Name),
			fmt.Sprintf("%s costs %s, which is within %s%% of your current balance.",
				goal.Name, goal.Price.StringFixed(2), goal.TriggerPercent.String()),
		)
		if err := s.publisher.PublishNotification(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish notification",
				"type", string(msg.Type), "error", err)
		}
	}
}
