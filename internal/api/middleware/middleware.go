package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/chinquiz/internal/api/apierr"
	"github.com/mcoot/chinquiz/internal/middleware"
)

// DefaultMaxBodyBytes caps API request bodies
const DefaultMaxBodyBytes = 64 << 10

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Recovery answers handler panics with a JSON 500
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// RateLimit rejects clients over their request budget with a JSON 429
func RateLimit(limiter *middleware.RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("rate limited",
			slog.String("client", middleware.ClientKey(r)),
			slog.String("path", r.URL.Path),
		)
		apierr.WriteError(w, apierr.NewRateLimitedError())
	})
}

// BodyLimit caps request bodies at maxBytes. A request whose declared length
// is already too large is rejected before the handler runs.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := middleware.RequestSizeLimiter(maxBytes)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				apierr.WriteError(w, &http.MaxBytesError{Limit: maxBytes})
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
