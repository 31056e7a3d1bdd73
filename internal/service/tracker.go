// Package service implements the command handlers and the dashboard
// aggregator on top of the persistence gateway.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/events"
)

// Store is the slice of the persistence gateway the services need. The
// concrete *storage.Repository satisfies it; tests may substitute a double.
type Store interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)

	CreateIncome(ctx context.Context, userID int64, in core.TransactionInput) (core.Income, error)
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	UpdateIncome(ctx context.Context, id int64, in core.TransactionInput) error
	ListIncomesByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.Income, error)

	CreateExpense(ctx context.Context, userID int64, in core.ExpenseInput) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) error
	ListExpensesByMonth(ctx context.Context, userID int64, start, end time.Time) ([]core.Expense, error)
}

// Publisher emits transaction events after successful writes.
type Publisher interface {
	PublishTransactionRecorded(ctx context.Context, event *events.TransactionEvent) error
}

// Tracker runs the registration and transaction commands. Every command
// returns failures as error values; validation rejections are
// *core.ValidationError regardless of create vs update.
type Tracker struct {
	store     Store
	publisher Publisher
}

// NewTracker creates the command service. publisher may be nil, in which case
// events are skipped.
func NewTracker(store Store, publisher Publisher) *Tracker {
	return &Tracker{store: store, publisher: publisher}
}

// Register validates the input, hashes the password and creates the user.
// The role always starts as USER; promotion happens out-of-band.
func (t *Tracker) Register(ctx context.Context, in core.RegisterInput) (core.User, error) {
	if err := in.Validate(); err != nil {
		return core.User{}, err
	}

	if _, err := t.store.GetUserByEmail(ctx, in.Email); err == nil {
		return core.User{}, core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := t.store.CreateUser(ctx, in.Email, in.Name, hash)
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user.
func (t *Tracker) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	user, err := t.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrUnauthorized
		}
		return core.User{}, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return core.User{}, core.ErrUnauthorized
	}
	return user, nil
}

// AddIncome validates and persists an income row owned by the caller.
func (t *Tracker) AddIncome(ctx context.Context, user core.User, in core.TransactionInput) (core.Income, error) {
	if user.ID <= 0 {
		return core.Income{}, core.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	income, err := t.store.CreateIncome(ctx, user.ID, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}

	t.publish(ctx, events.NewTransactionEvent(string(core.KindIncome), events.ActionCreated, income.ID, user.ID))
	return income, nil
}

// AddExpense validates and persists an expense row owned by the caller.
func (t *Tracker) AddExpense(ctx context.Context, user core.User, in core.ExpenseInput) (core.Expense, error) {
	if user.ID <= 0 {
		return core.Expense{}, core.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	expense, err := t.store.CreateExpense(ctx, user.ID, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	t.publish(ctx, events.NewTransactionEvent(string(core.KindExpense), events.ActionCreated, expense.ID, user.ID))
	return expense, nil
}

// GetIncomeForUser fetches an income the caller owns. Absent rows yield
// ErrNotFound; rows owned by another user yield ErrForbidden. The transport
// layer maps both to the same external behavior.
func (t *Tracker) GetIncomeForUser(ctx context.Context, user core.User, id int64) (core.Income, error) {
	if user.ID <= 0 {
		return core.Income{}, core.ErrUnauthorized
	}
	income, err := t.store.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if income.UserID != user.ID {
		return core.Income{}, core.ErrForbidden
	}
	return income, nil
}

// GetExpenseForUser mirrors GetIncomeForUser for expense rows.
func (t *Tracker) GetExpenseForUser(ctx context.Context, user core.User, id int64) (core.Expense, error) {
	if user.ID <= 0 {
		return core.Expense{}, core.ErrUnauthorized
	}
	expense, err := t.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if expense.UserID != user.ID {
		return core.Expense{}, core.ErrForbidden
	}
	return expense, nil
}

// UpdateIncome validates, checks ownership and updates the row in place.
func (t *Tracker) UpdateIncome(ctx context.Context, user core.User, id int64, in core.TransactionInput) error {
	if user.ID <= 0 {
		return core.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := t.GetIncomeForUser(ctx, user, id); err != nil {
		return err
	}
	if err := t.store.UpdateIncome(ctx, id, in); err != nil {
		return fmt.Errorf("update income: %w", err)
	}

	t.publish(ctx, events.NewTransactionEvent(string(core.KindIncome), events.ActionUpdated, id, user.ID))
	return nil
}

// UpdateExpense mirrors UpdateIncome for expense rows including category.
func (t *Tracker) UpdateExpense(ctx context.Context, user core.User, id int64, in core.ExpenseInput) error {
	if user.ID <= 0 {
		return core.ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := t.GetExpenseForUser(ctx, user, id); err != nil {
		return err
	}
	if err := t.store.UpdateExpense(ctx, id, in); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	t.publish(ctx, events.NewTransactionEvent(string(core.KindExpense), events.ActionUpdated, id, user.ID))
	return nil
}

func (t *Tracker) publish(ctx context.Context, event *events.TransactionEvent) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishTransactionRecorded(ctx, event); err != nil {
		// The row is already committed; the event is best-effort.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"error", err,
			"kind", event.Kind,
			"action", event.Action,
			"id", event.ID)
	}
}
