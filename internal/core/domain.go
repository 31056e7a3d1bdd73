package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

type (
	Role string

	TransactionKind string

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Email        string
		Name         string
		PasswordHash string
		Role         Role
		CreatedAt    time.Time
	}

	Income struct {
		ID          int64
		UserID      int64
		Amount      Money
		Description string
		Date        time.Time
		CreatedAt   time.Time
	}

	Expense struct {
		ID          int64
		UserID      int64
		Amount      Money
		Description string
		Date        time.Time
		Category    string
		CreatedAt   time.Time
	}

	// Transaction is a kind-tagged row of the merged dashboard feed.
	Transaction struct {
		Kind        TransactionKind
		ID          int64
		Amount      Money
		Description string
		Date        time.Time
		Category    string // empty for incomes
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrShortPassword    = errors.New("password too short")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrEmailTaken   = errors.New("email already exists")
)

// ValidationError marks an input rejection. Command handlers return it as a
// value; nothing in the write path panics or distinguishes create from update.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// RegisterInput is the validated shape of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

const minPasswordLen = 6

func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return invalid("email", ErrInvalidEmail)
	}
	if len(in.Password) < minPasswordLen {
		return invalid("password", ErrShortPassword)
	}
	return nil
}

// TransactionInput is the shared shape of income and expense submissions.
type TransactionInput struct {
	Amount      Money
	Description string
	Date        time.Time
}

func (in TransactionInput) Validate() error {
	if err := in.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if in.Date.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	return nil
}

// ExpenseInput composes the transaction shape with one extra required field.
// The category domain is an open string: any non-empty value is accepted, the
// add form only suggests values.
type ExpenseInput struct {
	TransactionInput
	Category string
}

func (in ExpenseInput) Validate() error {
	if err := in.TransactionInput.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	return nil
}
