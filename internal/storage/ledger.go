package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/core"
)

// GetOrCreateCategory resolves a category by case-insensitive name and
// type, creating it when absent.
func (r *SQLiteRepository) GetOrCreateCategory(ctx context.Context, name string, ct core.CategoryType, icon string) (core.Category, error) {
	if icon == "" {
		icon = "tag"
	}

	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, icon FROM categories WHERE lower(name) = lower(?) AND type = ?`,
		name, string(ct)).Scan(&c.ID, &c.Name, &typ, &c.Icon)
	if err == nil {
		c.Type = core.CategoryType(typ)
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("lookup category: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, icon) VALUES (?, ?, ?)`, name, string(ct), icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", id, "name", name, "type", string(ct))

	return core.Category{ID: id, Name: name, Type: ct, Icon: icon}, nil
}

// RenameCategory changes a category's display name. Names stay unique
// per type case-insensitively, so renaming onto a taken name returns
// ErrCategoryExists.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	var otherID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM categories
		 WHERE lower(name) = lower(?) AND type = (SELECT type FROM categories WHERE id = ?) AND id != ?`,
		name, id, id).Scan(&otherID)
	if err == nil {
		return core.Category{}, ErrCategoryExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("rename category: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Category{}, err
	}

	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, icon FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

// ListCategories returns categories of the given type, or all types when
// ct is empty.
func (r *SQLiteRepository) ListCategories(ctx context.Context, ct core.CategoryType) ([]core.Category, error) {
	query := `SELECT id, name, type, icon FROM categories ORDER BY name`
	args := []any{}
	if ct != "" {
		query = `SELECT id, name, type, icon FROM categories WHERE type = ? ORDER BY name`
		args = append(args, string(ct))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		out = append(out, c)
	}

	return out, rows.Err()
}

// DeleteCategory removes a category only when nothing references it.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var refs int64
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = ?) +
		        (SELECT COUNT(*) FROM spending_limits WHERE category_id = ?)`, id, id).
		Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	return tx.Commit()
}

// balanceDelta is the signed effect a transaction has on the owner's
// balance: income adds, expense subtracts.
func balanceDelta(t core.Transaction) decimal.Decimal {
	if t.Category.Type == core.Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// CreateTransaction inserts the transaction and applies its balance
// effect in a single database transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount, description, tx_date, recurring)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Category.ID, t.Amount.String(), t.Description,
		t.Date.Format(dateLayout), boolToInt(t.Recurring))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	if err := adjustBalance(ctx, tx, t.UserID, balanceDelta(t)); err != nil {
		return core.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"category", t.Category.Name,
		"amount", t.Amount.String())

	return t, nil
}

// UpdateTransaction replaces an existing transaction, reversing the old
// balance effect and applying the new one atomically.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := getTransactionTx(ctx, tx, t.UserID, t.ID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, amount = ?, description = ?, tx_date = ?, recurring = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		t.Category.ID, t.Amount.String(), t.Description,
		t.Date.Format(dateLayout), boolToInt(t.Recurring), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	delta := balanceDelta(t).Sub(balanceDelta(old))
	if err := adjustBalance(ctx, tx, t.UserID, delta); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	old, err := getTransactionTx(ctx, tx, userID, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := adjustBalance(ctx, tx, userID, balanceDelta(old).Neg()); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	return getTransactionTx(ctx, tx, userID, id)
}

const transactionColumns = `t.id, t.user_id, t.amount, t.description, t.tx_date, t.recurring,
	c.id, c.name, c.type, c.icon`

func getTransactionTx(ctx context.Context, tx *sql.Tx, userID, id int64) (core.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ? AND t.user_id = ?`, id, userID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var amount, date, typ string
	var recurring int
	err := row.Scan(&t.ID, &t.UserID, &amount, &t.Description, &date, &recurring,
		&t.Category.ID, &t.Category.Name, &typ, &t.Category.Icon)
	if err != nil {
		return core.Transaction{}, err
	}

	t.Category.Type = core.CategoryType(typ)
	t.Recurring = recurring != 0

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date: %w", err)
	}

	return t, nil
}

// ListTransactions returns the user's transactions in the inclusive
// date window, newest first. Zero bounds mean no bound on that side.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{userID}

	if !from.IsZero() {
		query += ` AND t.tx_date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND t.tx_date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY t.tx_date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// RecentTransactions returns the n most recent transactions for a user.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ?
		 ORDER BY t.tx_date DESC, t.id DESC
		 LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func adjustBalance(ctx context.Context, tx *sql.Tx, userID int64, delta decimal.Decimal) error {
	var balance string
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}

	current, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("parse balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = ? WHERE id = ?`,
		current.Add(delta).String(), userID); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
