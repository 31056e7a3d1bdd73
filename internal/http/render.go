package http

import (
	"bytes"
	"log/slog"
	"net/http"
)

// render executes a named template with status 200.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, name, data, http.StatusOK)
}

// renderStatus executes a named template into a buffer first so a template
// failure never leaks a half-written page to the client.
func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, name string, data any, status int) {
	if s.templates == nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			"template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
