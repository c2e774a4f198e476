package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/core"
)

func (r *SQLiteRepository) CreateLimit(ctx context.Context, l core.SpendingLimit) (core.SpendingLimit, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO spending_limits (user_id, category_id, threshold, period, start_date)
		 VALUES (?, ?, ?, ?, ?)`,
		l.UserID, l.Category.ID, l.Threshold.String(), string(l.Period),
		l.StartDate.Format(dateLayout))
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("insert limit: %w", err)
	}

	l.ID, err = res.LastInsertId()
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("limit insert id: %w", err)
	}

	return l, nil
}

// UpdateLimit replaces the mutable fields of an existing limit. The
// limit must belong to the user carried on l.
func (r *SQLiteRepository) UpdateLimit(ctx context.Context, l core.SpendingLimit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spending_limits SET category_id = ?, threshold = ?, period = ?, start_date = ?
		 WHERE id = ? AND user_id = ?`,
		l.Category.ID, l.Threshold.String(), string(l.Period),
		l.StartDate.Format(dateLayout), l.ID, l.UserID)
	if err != nil {
		return fmt.Errorf("update limit: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteLimit(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM spending_limits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete limit: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListLimits(ctx context.Context, userID int64) ([]core.SpendingLimit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.threshold, l.period, l.start_date,
		        c.id, c.name, c.type, c.icon
		 FROM spending_limits l JOIN categories c ON c.id = l.category_id
		 WHERE l.user_id = ?
		 ORDER BY l.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	defer rows.Close()

	var out []core.SpendingLimit
	for rows.Next() {
		l, err := scanLimit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

// ListLimitsForCategory returns the user's limits bound to one category.
func (r *SQLiteRepository) ListLimitsForCategory(ctx context.Context, userID, categoryID int64) ([]core.SpendingLimit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.threshold, l.period, l.start_date,
		        c.id, c.name, c.type, c.icon
		 FROM spending_limits l JOIN categories c ON c.id = l.category_id
		 WHERE l.user_id = ? AND l.category_id = ?
		 ORDER BY l.id`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list limits for category: %w", err)
	}
	defer rows.Close()

	var out []core.SpendingLimit
	for rows.Next() {
		l, err := scanLimit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

func scanLimit(row rowScanner) (core.SpendingLimit, error) {
	var l core.SpendingLimit
	var threshold, period, start, typ string
	err := row.Scan(&l.ID, &l.UserID, &threshold, &period, &start,
		&l.Category.ID, &l.Category.Name, &typ, &l.Category.Icon)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("scan limit: %w", err)
	}

	l.Category.Type = core.CategoryType(typ)
	l.Period = core.Period(period)

	if l.Threshold, err = decimal.NewFromString(threshold); err != nil {
		return core.SpendingLimit{}, fmt.Errorf("parse threshold: %w", err)
	}
	if l.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return core.SpendingLimit{}, fmt.Errorf("parse start date: %w", err)
	}

	return l, nil
}

func (r *SQLiteRepository) CreateSavingGoal(ctx context.Context, g core.SavingGoal) (core.SavingGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO saving_goals (user_id, name, target, current, target_date)
		 VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.String(), g.Current.String(),
		g.TargetDate.Format(dateLayout))
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("insert saving goal: %w", err)
	}

	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("saving goal insert id: %w", err)
	}

	return g, nil
}

func (r *SQLiteRepository) GetSavingGoal(ctx context.Context, userID, id int64) (core.SavingGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, target, current, target_date
		 FROM saving_goals WHERE id = ? AND user_id = ?`, id, userID)

	g, err := scanSavingGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingGoal{}, ErrNotFound
	}
	return g, err
}

func (r *SQLiteRepository) ListSavingGoals(ctx context.Context, userID int64) ([]core.SavingGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target, current, target_date
		 FROM saving_goals WHERE user_id = ? ORDER BY target_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingGoal
	for rows.Next() {
		g, err := scanSavingGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteSavingGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saving_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete saving goal: %w", err)
	}
	return requireAffected(res)
}

// DepositToSavingGoal moves amount from the user's balance into a goal,
// both sides updated in one database transaction.
func (r *SQLiteRepository) DepositToSavingGoal(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (core.SavingGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, name, target, current, target_date
		 FROM saving_goals WHERE id = ? AND user_id = ?`, goalID, userID)
	g, err := scanSavingGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingGoal{}, ErrNotFound
	}
	if err != nil {
		return core.SavingGoal{}, err
	}

	g.Current = g.Current.Add(amount)
	if _, err := tx.ExecContext(ctx,
		`UPDATE saving_goals SET current = ? WHERE id = ?`, g.Current.String(), goalID); err != nil {
		return core.SavingGoal{}, fmt.Errorf("update saving goal: %w", err)
	}

	if err := adjustBalance(ctx, tx, userID, amount.Neg()); err != nil {
		return core.SavingGoal{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.SavingGoal{}, fmt.Errorf("commit: %w", err)
	}

	return g, nil
}

func scanSavingGoal(row rowScanner) (core.SavingGoal, error) {
	var g core.SavingGoal
	var target, current, targetDate string
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &current, &targetDate)
	if err != nil {
		return core.SavingGoal{}, err
	}

	if g.Target, err = decimal.NewFromString(target); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse target: %w", err)
	}
	if g.Current, err = decimal.NewFromString(current); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse current: %w", err)
	}
	if g.TargetDate, err = time.Parse(dateLayout, targetDate); err != nil {
		return core.SavingGoal{}, fmt.Errorf("parse target date: %w", err)
	}

	return g, nil
}

func (r *SQLiteRepository) CreatePurchaseGoal(ctx context.Context, g core.PurchaseGoal) (core.PurchaseGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_goals (user_id, name, price, trigger_percent, notified)
		 VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Price.String(), g.TriggerPercent.String(), boolToInt(g.Notified))
	if err != nil {
		return core.PurchaseGoal{}, fmt.Errorf("insert purchase goal: %w", err)
	}

	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.PurchaseGoal{}, fmt.Errorf("purchase goal insert id: %w", err)
	}

	return g, nil
}

func (r *SQLiteRepository) ListPurchaseGoals(ctx context.Context, userID int64) ([]core.PurchaseGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, price, trigger_percent, notified
		 FROM purchase_goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchase goals: %w", err)
	}
	defer rows.Close()

	var out []core.PurchaseGoal
	for rows.Next() {
		var g core.PurchaseGoal
		var price, trigger string
		var notified int
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &price, &trigger, &notified); err != nil {
			return nil, fmt.Errorf("scan purchase goal: %w", err)
		}

		if g.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		if g.TriggerPercent, err = decimal.NewFromString(trigger); err != nil {
			return nil, fmt.Errorf("parse trigger percent: %w", err)
		}
		g.Notified = notified != 0

		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *SQLiteRepository) DeletePurchaseGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM purchase_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete purchase goal: %w", err)
	}
	return requireAffected(res)
}

// MarkPurchaseGoalNotified flips the notified flag and reports whether
// this call performed the transition. A goal already notified stays
// notified and returns false, so each goal fires at most once.
func (r *SQLiteRepository) MarkPurchaseGoalNotified(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchase_goals SET notified = 1 WHERE id = ? AND user_id = ? AND notified = 0`,
		id, userID)
	if err != nil {
		return false, fmt.Errorf("mark purchase goal notified: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
