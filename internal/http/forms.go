package http

import (
	"net/url"
	"time"

	"fintrack/internal/core"
)

// Form coercion lives here so the four transaction commands share one schema
// per entity shape instead of ad-hoc parsing per handler. Coercion failures
// come back as *core.ValidationError, the same rejection the service layer
// returns, so the handlers map them uniformly.

const dateLayout = "2006-01-02"

func parseTransactionForm(form url.Values) (core.TransactionInput, error) {
	var in core.TransactionInput

	cents, err := core.ParseDecimalToCents(form.Get("amount"))
	if err != nil {
		return in, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	in.Amount = core.Money{Cents: cents}

	in.Description = sanitizeInput(form.Get("description"))

	date, err := time.Parse(dateLayout, sanitizeInput(form.Get("date")))
	if err != nil {
		return in, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	in.Date = date

	return in, in.Validate()
}

func parseExpenseForm(form url.Values) (core.ExpenseInput, error) {
	tx, err := parseTransactionForm(form)
	if err != nil {
		// keep whatever coerced so the form can be re-rendered filled in
		return core.ExpenseInput{TransactionInput: tx, Category: sanitizeInput(form.Get("category"))}, err
	}
	in := core.ExpenseInput{
		TransactionInput: tx,
		Category:         sanitizeInput(form.Get("category")),
	}
	return in, in.Validate()
}

func parseRegisterForm(form url.Values) (core.RegisterInput, error) {
	in := core.RegisterInput{
		Name:     sanitizeInput(form.Get("name")),
		Email:    sanitizeInput(form.Get("email")),
		Password: form.Get("password"),
	}
	return in, in.Validate()
}
