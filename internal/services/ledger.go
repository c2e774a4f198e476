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

// LedgerStore is the persistence surface the ledger service needs.
type LedgerStore interface {
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	GetOrCreateCategory(ctx context.Context, name string, ct core.CategoryType, icon string) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, ct core.CategoryType) ([]core.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error)
	ListLimitsForCategory(ctx context.Context, userID, categoryID int64) ([]core.SpendingLimit, error)
}

// NotificationPublisher pushes notification messages to the queue. A nil
// publisher disables notifications without disabling the ledger.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// TransactionInput carries everything needed to record or edit an entry.
// The category is resolved by name and type, created when absent.
type TransactionInput struct {
	UserID       int64
	CategoryName string
	CategoryType core.CategoryType
	CategoryIcon string
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	Recurring    bool
}

type LedgerService struct {
	store     LedgerStore
	publisher NotificationPublisher
	logger    *log.Logger
}

func NewLedgerService(store LedgerStore, publisher NotificationPublisher, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Record validates and persists a new transaction, then checks the
// owner's spending limits and purchase goals against the new state.
func (s *LedgerService) Record(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := s.buildTransaction(ctx, in, 0)
	if err != nil {
		return core.Transaction{}, err
	}

	t, err = s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldOperation, log.OpCreate,
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"amount", t.Amount.String())

	s.afterBalanceChange(ctx, t)
	return t, nil
}

// Edit replaces an existing transaction. The storage layer reverses the
// old balance effect and applies the new one in one step.
func (s *LedgerService) Edit(ctx context.Context, id int64, in TransactionInput) (core.Transaction, error) {
	t, err := s.buildTransaction(ctx, in, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldOperation, log.OpUpdate,
		"transaction_id", id,
		"user_id", in.UserID)

	s.afterBalanceChange(ctx, t)
	return t, nil
}

func (s *LedgerService) Remove(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		"transaction_id", id,
		"user_id", userID)
	return nil
}

func (s *LedgerService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns transactions in the inclusive window; zero bounds mean
// unbounded on that side.
func (s *LedgerService) List(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, from, to)
}

func (s *LedgerService) Categories(ctx context.Context, ct core.CategoryType) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ct)
}

// CreateCategory resolves a category by name and type, creating it when
// absent. An existing match is returned as-is.
func (s *LedgerService) CreateCategory(ctx context.Context, name string, ct core.CategoryType, icon string) (core.Category, error) {
	if err := ct.Validate(); err != nil {
		return core.Category{}, err
	}
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	return s.store.GetOrCreateCategory(ctx, name, ct, icon)
}

func (s *LedgerService) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	return s.store.RenameCategory(ctx, id, name)
}

func (s *LedgerService) RemoveCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

func (s *LedgerService) buildTransaction(ctx context.Context, in TransactionInput, id int64) (core.Transaction, error) {
	if err := in.CategoryType.Validate(); err != nil {
		return core.Transaction{}, err
	}

	cat, err := s.store.GetOrCreateCategory(ctx, in.CategoryName, in.CategoryType, in.CategoryIcon)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
	}

	t := core.Transaction{
		ID:          id,
		UserID:      in.UserID,
		Category:    cat,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        core.Day(in.Date),
		Recurring:   in.Recurring,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	return t, nil
}

// afterBalanceChange runs the limit checks that follow a ledger write.
// Failures here are logged, never surfaced: the transaction itself
// already committed. Purchase goals are evaluated by the goal service.
func (s *LedgerService) afterBalanceChange(ctx context.Context, t core.Transaction) {
	if t.Category.Type != core.Expense {
		return
	}

	user, err := s.store.GetUserByID(ctx, t.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load user for limit checks",
			"user_id", t.UserID, "error", err)
		return
	}

	s.checkLimits(ctx, user, t)
}

func (s *LedgerService) checkLimits(ctx context.Context, user storage.User, t core.Transaction) {
	limits, err := s.store.ListLimitsForCategory(ctx, t.UserID, t.Category.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list limits",
			"user_id", t.UserID, "category_id", t.Category.ID, "error", err)
		return
	}

	if len(limits) == 0 {
		return
	}

	txs, err := s.store.ListTransactions(ctx, t.UserID, time.Time{}, time.Time{})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list transactions for limit check",
			"user_id", t.UserID, "error", err)
		return
	}

	now := time.Now()
	for _, limit := range limits {
		exceeded, err := core.IsExceeded(limit, txs, now)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping limit with invalid period",
				"limit_id", limit.ID, "error", err)
			continue
		}
		if !exceeded {
			continue
		}

		spent, _ := core.CurrentSpending(limit, txs, now)

		s.logger.WarnContext(ctx, "Spending limit exceeded",
			log.FieldOperation, log.OpEvaluate,
			"limit_id", limit.ID,
			"category", limit.Category.Name,
			"spent", spent.String(),
			"threshold", limit.Threshold.String())

		s.publish(ctx, amqp.NewNotificationMessage(
			amqp.NotificationLimitExceeded,
			user.ID,
			user.Email,
			fmt.Sprintf("Spending limit exceeded for %s", limit.Category.Name),
			fmt.Sprintf("You have spent %s of your %s %s limit for %s.",
				spent.StringFixed(2), limit.Threshold.StringFixed(2),
				limit.Period, limit.Category.Name),
		))
	}
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.NotificationMessage) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Notification publisher not configured, dropping message",
			"type", string(msg.Type))
		return
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish notification",
			"type", string(msg.Type), "error", err)
	}
}
