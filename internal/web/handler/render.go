package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// render writes a page component as HTML
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
