// Package cookie builds the session and flash cookies used by the
// authentication surface.
package cookie

import (
	"encoding/base64"
	"net/http"

	"sharp/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName carries the opaque session token.
	SessionCookieName = "SHARP_token"

	// flashCookieName carries a one-shot message for the next page render.
	flashCookieName = "SHARP_flash"

	flashMaxAge = 60
)

// NewSession builds the session cookie for a freshly issued token. The
// cookie's lifetime matches the server-side session limit, but the server
// check is authoritative; a replayed cookie past the limit is still denied.
func NewSession(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(entity.MaxSessionAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpireSession builds a cookie that clears the session token.
func ExpireSession() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// SessionToken extracts the presented session token, empty when absent.
func SessionToken(c echo.Context) string {
	ck, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}

	return ck.Value
}

// SetFlash stores a message shown on the next rendered page. The value is
// base64-encoded so arbitrary text survives cookie encoding rules.
func SetFlash(c echo.Context, message string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// TakeFlash returns the pending flash message, if any, and clears it.
func TakeFlash(c echo.Context) string {
	ck, err := c.Cookie(flashCookieName)
	if err != nil || ck.Value == "" {
		return ""
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(ck.Value)
	if err != nil {
		return ""
	}

	return string(decoded)
}
