package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"100", 10000, true},
		{"0.01", 1, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{" 7.5 ", 750, true},
		{"", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12a", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: expected %d, got %d err %v", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 1234}).String(); got != "12.34" {
		t.Fatalf("expected 12.34, got %s", got)
	}
	if got := (Money{Cents: 5}).String(); got != "0.05" {
		t.Fatalf("expected 0.05, got %s", got)
	}
	if got := (Money{Cents: -250}).String(); got != "-2.50" {
		t.Fatalf("expected -2.50, got %s", got)
	}
}
