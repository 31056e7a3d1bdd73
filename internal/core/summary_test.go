package core

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	// month is 0-based: 1 = February
	start, end := MonthWindow(2024, 1)
	if start != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start %v", start)
	}
	if end != time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC) {
		t.Fatalf("unexpected end %v", end)
	}

	leapDay := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	if leapDay.Before(start) || leapDay.After(end) {
		t.Fatalf("leap day should fall inside the window")
	}
	marchFirst := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !marchFirst.After(end) {
		t.Fatalf("march 1st should fall outside the window")
	}
}

func TestMonthWindowRollsIntoAdjacentYears(t *testing.T) {
	start, _ := MonthWindow(2024, 12) // overflow: January 2025
	if start != time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("expected January 2025, got %v", start)
	}
	start, _ = MonthWindow(2024, -1) // underflow: December 2023
	if start != time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("expected December 2023, got %v", start)
	}
}

func TestMergeTransactionsSortedDescending(t *testing.T) {
	incomes := []Income{
		{ID: 1, Amount: Money{Cents: 10000}, Description: "salary", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	expenses := []Expense{
		{ID: 2, Amount: Money{Cents: 4000}, Description: "groceries", Category: "Food", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	feed := MergeTransactions(incomes, expenses)
	if len(feed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(feed))
	}
	if feed[0].Kind != KindExpense || feed[0].Description != "groceries" {
		t.Fatalf("expected the later expense first, got %+v", feed[0])
	}
	if feed[1].Kind != KindIncome {
		t.Fatalf("expected the income second, got %+v", feed[1])
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].Date.After(feed[i-1].Date) {
			t.Fatalf("feed not sorted descending at %d", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	incomes := []Income{
		{ID: 1, Amount: Money{Cents: 10000}, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Amount: Money{Cents: 2550}, Date: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)},
	}
	expenses := []Expense{
		{ID: 3, Amount: Money{Cents: 4000}, Category: "Food", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	s := Summarize(2024, 2, incomes, expenses)
	if s.TotalIncome.Cents != 12550 {
		t.Fatalf("expected income 12550, got %d", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != 4000 {
		t.Fatalf("expected expense 4000, got %d", s.TotalExpense.Cents)
	}
	if s.Balance.Cents != s.TotalIncome.Cents-s.TotalExpense.Cents {
		t.Fatalf("balance invariant broken: %d", s.Balance.Cents)
	}
	if len(s.Transactions) != 3 {
		t.Fatalf("expected 3 feed rows, got %d", len(s.Transactions))
	}
}

func TestSummarizeEmptyMonth(t *testing.T) {
	s := Summarize(2024, 0, nil, nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("expected all-zero summary, got %+v", s)
	}
	if len(s.Transactions) != 0 {
		t.Fatalf("expected empty feed")
	}
}
