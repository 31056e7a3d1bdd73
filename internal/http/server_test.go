package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fintrack/internal/auth"
	"fintrack/internal/service"
	"fintrack/internal/storage"
)

type ServerTestSuite struct {
	suite.Suite
	repo   *storage.Repository
	server *Server
}

func (s *ServerTestSuite) SetupTest() {
	repo, err := storage.NewRepository(":memory:")
	s.Require().NoError(err)
	s.repo = repo

	sessions := auth.NewManager(repo)
	tracker := service.NewTracker(repo, nil)
	dashboard := service.NewDashboard(repo)

	s.server = NewServer(":0", tracker, dashboard, sessions, Options{
		RateLimitPerMinute: 1000,
	})
}

func (s *ServerTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *ServerTestSuite) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) register(name, email, password string) {
	rec := s.do(http.MethodPost, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Require().Equal("/login", rec.Header().Get("Location"))
}

func (s *ServerTestSuite) login(email, password string) *http.Cookie {
	rec := s.do(http.MethodPost, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Require().Equal("/dashboard", rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	s.Require().FailNow("no session cookie set on login")
	return nil
}

func (s *ServerTestSuite) TestRegisterRejectsDuplicateEmail() {
	s.register("Ada", "ada@example.com", "secret1")

	rec := s.do(http.MethodPost, "/register", url.Values{
		"name":     {"Other Ada"},
		"email":    {"ada@example.com"},
		"password": {"different1"},
	})
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), "Email already exists")
}

func (s *ServerTestSuite) TestRegisterRejectsInvalidInput() {
	rec := s.do(http.MethodPost, "/register", url.Values{
		"name":     {"Ada"},
		"email":    {"not-an-email"},
		"password": {"secret1"},
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *ServerTestSuite) TestLoginRejectsWrongPassword() {
	s.register("Ada", "ada@example.com", "secret1")

	rec := s.do(http.MethodPost, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"wrong-password"},
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Invalid email or password")
}

func (s *ServerTestSuite) TestDashboardRequiresSession() {
	rec := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *ServerTestSuite) TestAddIncomeShowsOnDashboard() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	today := time.Now().UTC().Format(dateLayout)
	rec := s.do(http.MethodPost, "/dashboard/add-income", url.Values{
		"amount":      {"1250.50"},
		"description": {"Salary"},
		"date":        {today},
	}, cookie)
	s.Require().Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/dashboard", nil, cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Salary")
	s.Contains(rec.Body.String(), "1250.50")
}

func (s *ServerTestSuite) TestAddExpenseRequiresCategory() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	today := time.Now().UTC().Format(dateLayout)
	rec := s.do(http.MethodPost, "/dashboard/add-expense", url.Values{
		"amount":      {"10.00"},
		"description": {"Lunch"},
		"date":        {today},
		"category":    {"  "},
	}, cookie)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "Category is required")
}

func (s *ServerTestSuite) TestInvalidAmountReRendersForm() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	rec := s.do(http.MethodPost, "/dashboard/add-income", url.Values{
		"amount":      {"-5"},
		"description": {"Refund"},
		"date":        {"2024-03-10"},
	}, cookie)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "Amount must be a positive number")
	// submitted values are kept for re-editing
	s.Contains(rec.Body.String(), "Refund")
}

func (s *ServerTestSuite) TestEditRejectsForeignRow() {
	s.register("Ada", "ada@example.com", "secret1")
	s.register("Bob", "bob@example.com", "secret2")

	adaCookie := s.login("ada@example.com", "secret1")
	bobCookie := s.login("bob@example.com", "secret2")

	rec := s.do(http.MethodPost, "/dashboard/add-income", url.Values{
		"amount":      {"100.00"},
		"description": {"Ada income"},
		"date":        {"2024-03-10"},
	}, adaCookie)
	s.Require().Equal(http.StatusSeeOther, rec.Code)

	// Bob tries Ada's row and a row that does not exist; both redirect the
	// same way.
	rec = s.do(http.MethodGet, "/dashboard/edit-income/1", nil, bobCookie)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/dashboard/edit-income/9999", nil, bobCookie)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	rec = s.do(http.MethodPost, "/dashboard/edit-income/1", url.Values{
		"amount":      {"999.99"},
		"description": {"hijacked"},
		"date":        {"2024-03-10"},
	}, bobCookie)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))
}

func (s *ServerTestSuite) TestEditIncomeUpdatesRow() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	today := time.Now().UTC().Format(dateLayout)
	rec := s.do(http.MethodPost, "/dashboard/add-income", url.Values{
		"amount":      {"100.00"},
		"description": {"Salary"},
		"date":        {today},
	}, cookie)
	s.Require().Equal(http.StatusSeeOther, rec.Code)

	rec = s.do(http.MethodGet, "/dashboard/edit-income/1", nil, cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Salary")

	rec = s.do(http.MethodPost, "/dashboard/edit-income/1", url.Values{
		"amount":      {"150.00"},
		"description": {"Salary plus bonus"},
		"date":        {today},
	}, cookie)
	s.Require().Equal(http.StatusSeeOther, rec.Code)

	rec = s.do(http.MethodGet, "/dashboard", nil, cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Salary plus bonus")
	s.Contains(rec.Body.String(), "150.00")
	s.NotContains(rec.Body.String(), "100.00")
}

func (s *ServerTestSuite) TestDashboardCacheInvalidatedOnWrite() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	today := time.Now().UTC().Format(dateLayout)

	// Prime the cache with the empty month.
	rec := s.do(http.MethodGet, "/dashboard", nil, cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "No transactions this month.")

	rec = s.do(http.MethodPost, "/dashboard/add-expense", url.Values{
		"amount":      {"42.00"},
		"description": {"Groceries"},
		"date":        {today},
		"category":    {"Food"},
	}, cookie)
	s.Require().Equal(http.StatusSeeOther, rec.Code)

	rec = s.do(http.MethodGet, "/dashboard", nil, cookie)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Groceries")
	s.Contains(rec.Body.String(), "42.00")
}

func (s *ServerTestSuite) TestLogoutClearsSession() {
	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	rec := s.do(http.MethodPost, "/logout", nil, cookie)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/dashboard", nil, cookie)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *ServerTestSuite) TestIndexRedirects() {
	rec := s.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))

	s.register("Ada", "ada@example.com", "secret1")
	cookie := s.login("ada@example.com", "secret1")

	rec = s.do(http.MethodGet, "/", nil, cookie)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
