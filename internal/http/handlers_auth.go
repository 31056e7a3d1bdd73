package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/core"
)

const sessionCookieName = "fintrack_session"

type authPageData struct {
	Error string
}

// handleIndex routes the root to the dashboard or the login page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.sessions.Resolve(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register", authPageData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderStatus(w, r, "register", authPageData{Error: "Invalid form submission"}, http.StatusBadRequest)
		return
	}

	in, err := parseRegisterForm(r.Form)
	if err == nil {
		_, err = s.tracker.Register(r.Context(), in)
	}
	if err != nil {
		var ve *core.ValidationError
		switch {
		case errors.As(err, &ve):
			// generic message, no per-field detail
			s.renderStatus(w, r, "register", authPageData{Error: "Invalid input"}, http.StatusUnprocessableEntity)
		case errors.Is(err, core.ErrEmailTaken):
			s.renderStatus(w, r, "register", authPageData{Error: "Email already exists"}, http.StatusConflict)
		default:
			slog.ErrorContext(r.Context(), "Registration failed", "error", err)
			s.renderStatus(w, r, "register", authPageData{Error: "Something went wrong"}, http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.sessions.Resolve(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	s.render(w, r, "login", authPageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderStatus(w, r, "login", authPageData{Error: "Invalid form submission"}, http.StatusBadRequest)
		return
	}

	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	user, err := s.tracker.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			s.renderStatus(w, r, "login", authPageData{Error: "Invalid email or password"}, http.StatusUnauthorized)
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		s.renderStatus(w, r, "login", authPageData{Error: "Something went wrong"}, http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := s.sessions.Start(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to start session", "error", err, "user_id", user.ID)
		s.renderStatus(w, r, "login", authPageData{Error: "Something went wrong"}, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.End(r.Context(), cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "Failed to end session", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
