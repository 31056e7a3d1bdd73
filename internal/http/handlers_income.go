package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fintrack/internal/core"
)

type incomeFormData struct {
	Title       string
	Action      string
	Amount      string
	Description string
	Date        string
	Error       string
}

func (s *Server) handleAddIncomePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "income_form", incomeFormData{
		Title:  "Add income",
		Action: "/dashboard/add-income",
	})
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	in, err := parseTransactionForm(r.Form)
	if err == nil {
		_, err = s.tracker.AddIncome(r.Context(), user, in)
	}
	if err != nil {
		data := incomeFormData{
			Title:       "Add income",
			Action:      "/dashboard/add-income",
			Amount:      r.Form.Get("amount"),
			Description: r.Form.Get("description"),
			Date:        r.Form.Get("date"),
		}
		s.failTransactionForm(w, r, "income_form", data.withError, err)
		return
	}

	s.invalidateSummaries(user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleEditIncomePage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	income, err := s.tracker.GetIncomeForUser(r.Context(), user, id)
	if err != nil {
		s.redirectFetchFailure(w, r, err)
		return
	}

	s.render(w, r, "income_form", incomeFormData{
		Title:       "Edit income",
		Action:      "/dashboard/edit-income/" + strconv.FormatInt(id, 10),
		Amount:      income.Amount.String(),
		Description: income.Description,
		Date:        income.Date.Format(dateLayout),
	})
}

func (s *Server) handleEditIncome(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	in, err := parseTransactionForm(r.Form)
	if err == nil {
		err = s.tracker.UpdateIncome(r.Context(), user, id, in)
	}
	if err != nil {
		data := incomeFormData{
			Title:       "Edit income",
			Action:      "/dashboard/edit-income/" + strconv.FormatInt(id, 10),
			Amount:      r.Form.Get("amount"),
			Description: r.Form.Get("description"),
			Date:        r.Form.Get("date"),
		}
		s.failTransactionForm(w, r, "income_form", data.withError, err)
		return
	}

	s.invalidateSummaries(user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (d incomeFormData) withError(msg string) any {
	d.Error = msg
	return d
}

// failTransactionForm maps a write rejection onto the right response:
// validation rejections re-render the form, missing or foreign rows send the
// caller back to the dashboard with no distinction between the two.
func (s *Server) failTransactionForm(w http.ResponseWriter, r *http.Request, tmpl string, withError func(string) any, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		s.renderStatus(w, r, tmpl, withError(validationMessage(ve)), http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrUnauthorized):
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrNotFound):
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	default:
		slog.ErrorContext(r.Context(), "Transaction write failed", "error", err)
		s.renderStatus(w, r, tmpl, withError("Something went wrong. Please try again."), http.StatusInternalServerError)
	}
}

// redirectFetchFailure handles errors from the edit-page fetch. Rows that are
// absent and rows owned by someone else get the same redirect.
func (s *Server) redirectFetchFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, core.ErrForbidden), errors.Is(err, core.ErrNotFound):
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	default:
		slog.ErrorContext(r.Context(), "Transaction fetch failed", "error", err)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func validationMessage(ve *core.ValidationError) string {
	switch ve.Field {
	case "amount":
		return "Amount must be a positive number"
	case "description":
		return "Description is required"
	case "date":
		return "Date must be a valid YYYY-MM-DD date"
	case "category":
		return "Category is required"
	default:
		return "Invalid input"
	}
}
