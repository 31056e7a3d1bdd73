// Package storage is the persistence gateway: a single SQLite-backed handle
// constructed at startup and injected into every service.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens the database at dbPath, creating its directory if
// needed, and applies pending migrations. Use ":memory:" for tests.
func NewRepository(dbPath string) (*Repository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// mapRowErr converts driver-level absence into the domain taxonomy.
func mapRowErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		email, name, passwordHash, string(core.RoleUser))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "email", email)
	return r.GetUserByID(ctx, id)
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM users WHERE id = ?`, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM users WHERE email = ?`, email))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return core.User{}, mapRowErr(err)
	}
	u.Role = core.Role(role)
	return u, nil
}

// SetUserRole updates a user's role by email. Used by the makeadmin tool.
func (r *Repository) SetUserRole(ctx context.Context, email string, role core.Role) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE email = ?`, string(role), email)
	if err != nil {
		return core.User{}, fmt.Errorf("update user role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.User{}, core.ErrNotFound
	}
	return r.GetUserByEmail(ctx, email)
}

// --- incomes ---

func (r *Repository) CreateIncome(ctx context.Context, userID int64, in core.TransactionInput) (core.Income, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount_cents, description, date) VALUES (?, ?, ?, ?)`,
		userID, in.Amount.Cents, in.Description, in.Date.UTC())
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income insert id: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", id,
		"user_id", userID,
		"amount_cents", in.Amount.Cents,
		"description", in.Description)

	return r.GetIncome(ctx, id)
}

// GetIncome fetches by id regardless of owner; the service layer performs
// the ownership check so forbidden and not-found stay distinguishable there.
func (r *Repository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, description, date, created_at FROM incomes WHERE id = ?`, id)
	var in core.Income
	if err := row.Scan(&in.ID, &in.UserID, &in.Amount.Cents, &in.Description, &in.Date, &in.CreatedAt); err != nil {
		return core.Income{}, mapRowErr(err)
	}
	return in, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, id int64, in core.TransactionInput) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET amount_cents = ?, description = ?, date = ? WHERE id = ?`,
		in.Amount.Cents, in.Description, in.Date.UTC(), id)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListIncomesByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, description, date, created_at
		 FROM incomes WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var in core.Income
		if err := rows.Scan(&in.ID, &in.UserID, &in.Amount.Cents, &in.Description, &in.Date, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// --- expenses ---

func (r *Repository) CreateExpense(ctx context.Context, userID int64, in core.ExpenseInput) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount_cents, description, date, category) VALUES (?, ?, ?, ?, ?)`,
		userID, in.Amount.Cents, in.Description, in.Date.UTC(), in.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"user_id", userID,
		"amount_cents", in.Amount.Cents,
		"description", in.Description,
		"category", in.Category)

	return r.GetExpense(ctx, id)
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, description, date, category, created_at FROM expenses WHERE id = ?`, id)
	var ex core.Expense
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Amount.Cents, &ex.Description, &ex.Date, &ex.Category, &ex.CreatedAt); err != nil {
		return core.Expense{}, mapRowErr(err)
	}
	return ex, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, description = ?, date = ?, category = ? WHERE id = ?`,
		in.Amount.Cents, in.Description, in.Date.UTC(), in.Category, id)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListExpensesByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, description, date, category, created_at
		 FROM expenses WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date DESC`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var ex core.Expense
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Amount.Cents, &ex.Description, &ex.Date, &ex.Category, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, ex)
	}
	return expenses, rows.Err()
}

// --- sessions ---

func (r *Repository) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a session token to its user and expiry in one join.
func (r *Repository) GetSessionUser(ctx context.Context, token string) (core.User, time.Time, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.role, u.created_at, s.expires_at
		 FROM sessions s JOIN users u ON s.user_id = u.id
		 WHERE s.token = ?`, token)

	var u core.User
	var role string
	var expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &expiresAt); err != nil {
		return core.User{}, time.Time{}, mapRowErr(err)
	}
	u.Role = core.Role(role)
	return u, expiresAt, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes stale sessions and returns how many went away.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
