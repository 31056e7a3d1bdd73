package http

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	"fintrack/internal/core"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{name: "in range", year: 2024, month: 2, wantYear: 2024, wantMonth: 2},
		{name: "rolls forward", year: 2024, month: 12, wantYear: 2025, wantMonth: 0},
		{name: "rolls backward", year: 2024, month: -1, wantYear: 2023, wantMonth: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m := normalizeMonth(tt.year, tt.month)
			if y != tt.wantYear || m != tt.wantMonth {
				t.Fatalf("got (%d, %d), want (%d, %d)", y, m, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestMonthLabel(t *testing.T) {
	if got := monthLabel(2024, 2); got != "March 2024" {
		t.Fatalf("got %q, want %q", got, "March 2024")
	}
	if got := monthLabel(2024, 12); got != "January 2025" {
		t.Fatalf("got %q, want %q", got, "January 2025")
	}
}

func TestParseMonthQueryPassesThroughOutOfRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/dashboard?year=2024&month=14", nil)
	year, month := parseMonthQuery(r)
	if year != 2024 || month != 14 {
		t.Fatalf("got (%d, %d), want (2024, 14)", year, month)
	}
}

func TestSummaryKeyUsesUserPrefix(t *testing.T) {
	key := summaryKey(7, 2024, 3)
	prefix := summaryKeyPrefix(7)
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		t.Fatalf("key %q does not start with prefix %q", key, prefix)
	}
}

func TestParseTransactionForm(t *testing.T) {
	form := url.Values{
		"amount":      {"12.345"},
		"description": {"  Coffee  "},
		"date":        {"2024-03-10"},
	}
	in, err := parseTransactionForm(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Amount.Cents != 1235 {
		t.Fatalf("got %d cents, want 1235", in.Amount.Cents)
	}
	if in.Description != "Coffee" {
		t.Fatalf("got %q, want trimmed description", in.Description)
	}
}

func TestParseTransactionFormRejections(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantField string
	}{
		{
			name:      "bad amount",
			form:      url.Values{"amount": {"abc"}, "description": {"x"}, "date": {"2024-03-10"}},
			wantField: "amount",
		},
		{
			name:      "bad date",
			form:      url.Values{"amount": {"5"}, "description": {"x"}, "date": {"10/03/2024"}},
			wantField: "date",
		},
		{
			name:      "empty description",
			form:      url.Values{"amount": {"5"}, "description": {"   "}, "date": {"2024-03-10"}},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTransactionForm(tt.form)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("got field %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestSanitizeInputStripsControlCharacters(t *testing.T) {
	if got := sanitizeInput("  hel\x00lo\x07  "); got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}
