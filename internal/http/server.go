// Package http provides the web transport: routing, session-aware
// middleware, page handlers and the dashboard summary cache.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/service"
	appweb "fintrack/web"
)

// Options tune transport behavior.
type Options struct {
	SecureCookie       bool
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template

	tracker   *service.Tracker
	dashboard *service.Dashboard
	sessions  *auth.Manager

	limiter      *ratelimit.Limiter
	secureCookie bool

	// Cached dashboard summaries, invalidated per user on every write.
	summaryCache *cache.LRUCache[core.MonthSummary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, tracker *service.Tracker, dashboard *service.Dashboard, sessions *auth.Manager, opts Options) *Server {
	mux := http.NewServeMux()

	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	s := &Server{
		tracker:          tracker,
		dashboard:        dashboard,
		sessions:         sessions,
		limiter:          ratelimit.NewLimiter(perMinute, time.Minute),
		secureCookie:     opts.SecureCookie,
		summaryCache:     cache.NewLRUCache[core.MonthSummary](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /dashboard", s.requireUser(s.handleDashboard))
	mux.Handle("GET /dashboard/add-income", s.requireUser(s.handleAddIncomePage))
	mux.Handle("POST /dashboard/add-income", s.requireUser(s.handleAddIncome))
	mux.Handle("GET /dashboard/add-expense", s.requireUser(s.handleAddExpensePage))
	mux.Handle("POST /dashboard/add-expense", s.requireUser(s.handleAddExpense))
	mux.Handle("GET /dashboard/edit-income/{id}", s.requireUser(s.handleEditIncomePage))
	mux.Handle("POST /dashboard/edit-income/{id}", s.requireUser(s.handleEditIncome))
	mux.Handle("GET /dashboard/edit-expense/{id}", s.requireUser(s.handleEditExpensePage))
	mux.Handle("POST /dashboard/edit-expense/{id}", s.requireUser(s.handleEditExpense))

	traceMw := trace.NewMiddleware(clientIP)
	securityMw := security.Middleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:    addr,
		Handler: traceMw.Middleware(securityMw(s.withRateLimit(mux))),
	}

	return s
}

// withRateLimit rejects clients over their per-minute budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r), "path", r.URL.Path)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const userContextKey contextKey = "user"

// requireUser resolves the session cookie and injects the user into the
// request context; unauthenticated requests are redirected to the login page.
func (s *Server) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		user, err := s.sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the authenticated user injected by requireUser.
func userFromContext(ctx context.Context) core.User {
	if user, ok := ctx.Value(userContextKey).(core.User); ok {
		return user
	}
	return core.User{}
}

// invalidateSummaries drops every cached month of one user after a write.
func (s *Server) invalidateSummaries(userID int64) {
	n := s.summaryCache.DeletePrefix(summaryKeyPrefix(userID))
	if n > 0 {
		slog.Debug("Dashboard cache invalidated", "user_id", userID, "entries", n)
	}
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
