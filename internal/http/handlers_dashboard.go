package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

type monthLink struct {
	Year  int
	Month int
}

type dashboardData struct {
	UserName string
	Label    string
	Summary  core.MonthSummary
	Prev     monthLink
	Next     monthLink
	Error    string
}

// handleDashboard serves the month summary: totals, balance and the merged
// feed. Summaries are cached per user and month; a fetch failure renders an
// explicit error state rather than a zeroed summary.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	year, month := parseMonthQuery(r)
	year, month = normalizeMonth(year, month)

	data := dashboardData{
		UserName: user.Name,
		Label:    monthLabel(year, month),
	}
	data.Prev.Year, data.Prev.Month = normalizeMonth(year, month-1)
	data.Next.Year, data.Next.Month = normalizeMonth(year, month+1)

	key := summaryKey(user.ID, year, month)
	if summary, ok := s.summaryCache.Get(key); ok {
		data.Summary = summary
		s.render(w, r, "dashboard", data)
		return
	}

	summary, err := s.dashboard.Summarize(r.Context(), user.ID, year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build month summary",
			"error", err, "user_id", user.ID, "year", year, "month", month)
		data.Error = "Could not load this month. Please try again."
		s.renderStatus(w, r, "dashboard", data, http.StatusInternalServerError)
		return
	}

	s.summaryCache.Set(key, summary)
	data.Summary = summary
	s.render(w, r, "dashboard", data)
}
