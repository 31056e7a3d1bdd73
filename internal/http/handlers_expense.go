package http

import (
	"net/http"
	"strconv"
)

// categories is the suggested picklist rendered in the expense form. The
// domain stays an open string; any non-empty category is accepted.
var categories = []string{
	"Food",
	"Transport",
	"Housing",
	"Utilities",
	"Entertainment",
	"Health",
	"Other",
}

type expenseFormData struct {
	Title       string
	Action      string
	Amount      string
	Description string
	Date        string
	Category    string
	Categories  []string
	Error       string
}

func (s *Server) handleAddExpensePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "expense_form", expenseFormData{
		Title:      "Add expense",
		Action:     "/dashboard/add-expense",
		Categories: categories,
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	in, err := parseExpenseForm(r.Form)
	if err == nil {
		_, err = s.tracker.AddExpense(r.Context(), user, in)
	}
	if err != nil {
		data := expenseFormData{
			Title:       "Add expense",
			Action:      "/dashboard/add-expense",
			Amount:      r.Form.Get("amount"),
			Description: r.Form.Get("description"),
			Date:        r.Form.Get("date"),
			Category:    r.Form.Get("category"),
			Categories:  categories,
		}
		s.failTransactionForm(w, r, "expense_form", data.withError, err)
		return
	}

	s.invalidateSummaries(user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleEditExpensePage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	expense, err := s.tracker.GetExpenseForUser(r.Context(), user, id)
	if err != nil {
		s.redirectFetchFailure(w, r, err)
		return
	}

	s.render(w, r, "expense_form", expenseFormData{
		Title:       "Edit expense",
		Action:      "/dashboard/edit-expense/" + strconv.FormatInt(id, 10),
		Amount:      expense.Amount.String(),
		Description: expense.Description,
		Date:        expense.Date.Format(dateLayout),
		Category:    expense.Category,
		Categories:  categories,
	})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
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

	in, err := parseExpenseForm(r.Form)
	if err == nil {
		err = s.tracker.UpdateExpense(r.Context(), user, id, in)
	}
	if err != nil {
		data := expenseFormData{
			Title:       "Edit expense",
			Action:      "/dashboard/edit-expense/" + strconv.FormatInt(id, 10),
			Amount:      r.Form.Get("amount"),
			Description: r.Form.Get("description"),
			Date:        r.Form.Get("date"),
			Category:    r.Form.Get("category"),
			Categories:  categories,
		}
		s.failTransactionForm(w, r, "expense_form", data.withError, err)
		return
	}

	s.invalidateSummaries(user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (d expenseFormData) withError(msg string) any {
	d.Error = msg
	return d
}
