package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/chinquiz/internal/middleware"
)

const panicMessage = "Something went wrong. Please try again."

// Recovery sends the player back to the start page with an error flash when a
// page handler panics. A panic on the start page itself gets a plain 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		if r.URL.Path == "/" {
			middleware.PlainPanicHandler(w, r, nil)
			return
		}
		SetFlash(w, FlashError, panicMessage)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}
