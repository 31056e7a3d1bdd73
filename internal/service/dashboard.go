package service

import (
	"context"
	"fmt"

	"fintrack/internal/core"

	"golang.org/x/sync/errgroup"
)

// Dashboard computes monthly aggregates for one user.
type Dashboard struct {
	store Store
}

func NewDashboard(store Store) *Dashboard {
	return &Dashboard{store: store}
}

// Summarize fetches the user's incomes and expenses inside the month window
// concurrently and folds them into totals plus the merged feed. The month is
// 0-based per the dashboard query contract. Fetch failures are returned, not
// replaced with zeroed output; the caller decides how to surface them.
func (d *Dashboard) Summarize(ctx context.Context, userID int64, year, month int) (core.MonthSummary, error) {
	if userID <= 0 {
		return core.MonthSummary{}, core.ErrUnauthorized
	}

	start, end := core.MonthWindow(year, month)

	var (
		incomes  []core.Income
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = d.store.ListIncomesByMonth(gctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = d.store.ListExpensesByMonth(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("load month %d-%02d: %w", year, month+1, err)
	}

	return core.Summarize(year, month, incomes, expenses), nil
}
