package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or does not belong
// to the requesting user.
var ErrNotFound = errors.New("not found")

// ErrCategoryInUse is returned when deleting a category that still has
// transactions or limits referencing it.
var ErrCategoryInUse = errors.New("category has transactions")

// ErrCategoryExists is returned when renaming a category onto a name
// another category of the same type already holds.
var ErrCategoryExists = errors.New("category already exists")

// ErrAlreadySetUp is returned when the one-time account setup is
// attempted a second time.
var ErrAlreadySetUp = errors.New("setup already completed")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applySchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

//go:embed migrations/*.sql
var schemaFS embed.FS

// applySchema brings the database up to the latest embedded migration.
// golang-migrate takes ownership of the connection it is handed, so it
// gets one of its own.
func applySchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open schema connection: %w", err)
	}
	defer db.Close()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migration driver: %w", err)
	}

	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return fmt.Errorf("embedded migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Balance      decimal.Decimal
	SetupDone    bool
	CreatedAt    time.Time
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, username, passwordHash string) (User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password_hash, balance) VALUES (?, ?, ?, '0')`,
		email, username, passwordHash)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user insert id: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, balance, setup_done, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, balance, setup_done, created_at FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var balance string
	var setupDone int
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &balance, &setupDone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}

	u.SetupDone = setupDone != 0
	u.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return User{}, fmt.Errorf("parse balance: %w", err)
	}

	return u, nil
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res)
}

// starterCategories is the set a fresh account gets during setup.
// Seeding skips names that already exist for the type.
var starterCategories = []struct {
	name string
	typ  core.CategoryType
	icon string
}{
	{"Salary", core.Income, "banknote"},
	{"Other Income", core.Income, "coins"},
	{"Groceries", core.Expense, "shopping-cart"},
	{"Rent", core.Expense, "home"},
	{"Transport", core.Expense, "bus"},
	{"Bills", core.Expense, "receipt"},
	{"Entertainment", core.Expense, "film"},
	{"Health", core.Expense, "heart-pulse"},
}

// CompleteSetup records the one-time initial balance and seeds the
// starter categories. A repeat call returns ErrAlreadySetUp.
func (r *SQLiteRepository) CompleteSetup(ctx context.Context, userID int64, initialBalance decimal.Decimal) (User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var done int
	err = tx.QueryRowContext(ctx, `SELECT setup_done FROM users WHERE id = ?`, userID).Scan(&done)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup setup state: %w", err)
	}
	if done != 0 {
		return User{}, ErrAlreadySetUp
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = ?, setup_done = 1 WHERE id = ?`,
		initialBalance.String(), userID); err != nil {
		return User{}, fmt.Errorf("set initial balance: %w", err)
	}

	for _, c := range starterCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, type, icon)
			 SELECT ?, ?, ?
			 WHERE NOT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower(?) AND type = ?)`,
			c.name, string(c.typ), c.icon, c.name, string(c.typ)); err != nil {
			return User{}, fmt.Errorf("seed category %q: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit: %w", err)
	}

	return r.GetUserByID(ctx, userID)
}

// CreateResetToken issues a fresh single-use password reset token.
func (r *SQLiteRepository) CreateResetToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id) VALUES (?, ?)`, token, userID)
	if err != nil {
		return "", fmt.Errorf("insert reset token: %w", err)
	}
	return token, nil
}

// ConsumeResetToken marks the token used and returns its owner. A token
// can be consumed once; expired or already-used tokens yield ErrNotFound.
func (r *SQLiteRepository) ConsumeResetToken(ctx context.Context, token string, maxAge time.Duration) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, created_at FROM password_reset_tokens WHERE token = ? AND used = 0`, token).
		Scan(&userID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup reset token: %w", err)
	}

	if time.Since(createdAt) > maxAge {
		return 0, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE token = ?`, token); err != nil {
		return 0, fmt.Errorf("mark reset token used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return userID, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
