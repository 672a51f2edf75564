package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/identity"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"

	// IdentityCookieName holds the player's encoded identity
	IdentityCookieName = "chinquiz_player"
	// SessionCookieName holds the id of the player's current quiz session
	SessionCookieName = "chinquiz_session"

	identityMaxAge = 365 * 24 * time.Hour
	sessionMaxAge  = 24 * time.Hour
)

// GetIdentity retrieves the player identity from the request context
// Returns nil if the browser has not stored one
func GetIdentity(ctx context.Context) *model.PlayerIdentity {
	player, _ := ctx.Value(identityContextKey).(*model.PlayerIdentity)
	return player
}

// Identity returns middleware that reads the identity cookie into the context.
// An unreadable cookie is treated as absent.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var player *model.PlayerIdentity
			if cookie, err := r.Cookie(IdentityCookieName); err == nil {
				if decoded, err := identity.Decode(cookie.Value); err == nil {
					player = &decoded
				}
			}
			ctx := context.WithValue(r.Context(), identityContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity returns middleware that sends players without a stored name
// back to the start screen. Requires Identity to be applied first.
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := GetIdentity(r.Context())
			if player == nil || !player.HasName() {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetIdentity stores the player's identity in a cookie
func SetIdentity(w http.ResponseWriter, player model.PlayerIdentity) error {
	value, err := identity.Encode(player)
	if err != nil {
		return err
	}
	setCookie(w, IdentityCookieName, value, identityMaxAge)
	return nil
}

// GetSessionID returns the quiz session id stored in the request, if any
func GetSessionID(r *http.Request) model.SessionID {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return model.SessionID(cookie.Value)
}

// SetSessionID stores the current quiz session id in a cookie
func SetSessionID(w http.ResponseWriter, id model.SessionID) {
	setCookie(w, SessionCookieName, string(id), sessionMaxAge)
}

func setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
