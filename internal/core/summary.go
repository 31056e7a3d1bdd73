package core

import (
	"sort"
	"time"
)

// MonthSummary is the aggregate view of one user's month.
type MonthSummary struct {
	Year         int
	Month        int // 0-based, matching the dashboard query contract
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	Transactions []Transaction
}

// MonthWindow returns the first and last instant of a month. The month is
// 0-based (0 = January); out-of-range values roll into adjacent years because
// time.Date normalizes them. The window end is 23:59:59 of the last day.
func MonthWindow(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.Month(month+2), 1, 0, 0, 0, 0, time.UTC).Add(-time.Second)
	return start, end
}

// MergeTransactions combines incomes and expenses into one feed sorted
// descending by date. The sort is stable; rows with equal dates keep their
// relative input order since date is the only key.
func MergeTransactions(incomes []Income, expenses []Expense) []Transaction {
	feed := make([]Transaction, 0, len(incomes)+len(expenses))
	for _, in := range incomes {
		feed = append(feed, Transaction{
			Kind:        KindIncome,
			ID:          in.ID,
			Amount:      in.Amount,
			Description: in.Description,
			Date:        in.Date,
		})
	}
	for _, ex := range expenses {
		feed = append(feed, Transaction{
			Kind:        KindExpense,
			ID:          ex.ID,
			Amount:      ex.Amount,
			Description: ex.Description,
			Date:        ex.Date,
			Category:    ex.Category,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	return feed
}

// Summarize computes totals and the merged feed for one month of rows.
// Balance is always TotalIncome - TotalExpense, including for empty months.
func Summarize(year, month int, incomes []Income, expenses []Expense) MonthSummary {
	var totalIncome, totalExpense int64
	for _, in := range incomes {
		totalIncome += in.Amount.Cents
	}
	for _, ex := range expenses {
		totalExpense += ex.Amount.Cents
	}
	return MonthSummary{
		Year:         year,
		Month:        month,
		TotalIncome:  Money{Cents: totalIncome},
		TotalExpense: Money{Cents: totalExpense},
		Balance:      Money{Cents: totalIncome - totalExpense},
		Transactions: MergeTransactions(incomes, expenses),
	}
}
