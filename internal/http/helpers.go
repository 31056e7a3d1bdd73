package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseMonthQuery extracts year and 0-based month from query parameters,
// defaulting to the current month. Out-of-range months are passed through;
// the month window arithmetic normalizes them into adjacent years.
func parseMonthQuery(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month()) - 1

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	return year, month
}

// normalizeMonth folds an out-of-range 0-based month into its actual
// year/month pair, e.g. (2024, 12) -> (2025, 0).
func normalizeMonth(year, month int) (int, int) {
	t := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month()) - 1
}

// monthLabel renders a 0-based month as "March 2024".
func monthLabel(year, month int) string {
	y, m := normalizeMonth(year, month)
	return fmt.Sprintf("%s %d", time.Month(m+1), y)
}

// summaryKeyPrefix is the cache key prefix for one user's summaries.
func summaryKeyPrefix(userID int64) string {
	return fmt.Sprintf("user:%d:", userID)
}

// summaryKey is the cache key for one user's month summary.
func summaryKey(userID int64, year, month int) string {
	return fmt.Sprintf("%s%d-%d", summaryKeyPrefix(userID), year, month)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
