package cart

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionCookie = "cartSession"

// sessionID returns the cart session id, minting a cookie on first
// contact. Carts are session-scoped, not tied to a user account, so
// guests can browse and fill a cart before logging in.
func (h *CartHandler) sessionID(c echo.Context) string {
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}

	sid := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
