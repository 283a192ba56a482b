package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kslmndz/bakery_shop/internal/models"
)

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("userID").(uint)
	return id, ok
}

// Role returns the authenticated role, "" when unauthenticated.
func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	c.Set("userID", uint(claims["sub"].(float64)))
	role, _ := claims["role"].(string)
	c.Set("role", role)
}

// RequireAuth validates the access cookie, transparently rotating the
// pair when the access token expired. Deactivated accounts are
// rejected even with a valid token.
func (t *TokenService) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if asCookie, err := c.Cookie("accessToken"); err == nil {
			parsed, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				return t.JWTSecret, nil
			})
			if err == nil && parsed.Valid {
				claims := parsed.Claims.(jwt.MapClaims)
				if err := t.checkActive(uint(claims["sub"].(float64))); err != nil {
					return err
				}
				setUserContext(c, claims)
				return next(c)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}
		newAccess, newRefresh, err := t.RotateToken(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token: "+err.Error())
		}

		c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(AccessTTL)))
		c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTTL)))

		parsed, _ := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
		claims := parsed.Claims.(jwt.MapClaims)
		if err := t.checkActive(uint(claims["sub"].(float64))); err != nil {
			return err
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// OptionalAuth sets the user context when a valid access cookie is
// present and lets the request through anonymously otherwise. Used on
// routes that degrade rather than fail without a login, like product
// creation falling back to the default baker. A valid token for a
// deactivated account is rejected outright, same as RequireAuth.
func (t *TokenService) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie("accessToken")
		if err != nil {
			return next(c)
		}
		parsed, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if err != nil || !parsed.Valid {
			return next(c)
		}
		claims := parsed.Claims.(jwt.MapClaims)
		if err := t.checkActive(uint(claims["sub"].(float64))); err != nil {
			return err
		}
		setUserContext(c, claims)
		return next(c)
	}
}

// RequireRole gates a route to the given roles. Must be registered
// after RequireAuth. The client may hide affordances, but this is the
// authorization boundary.
func (t *TokenService) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
		}
	}
}

func (t *TokenService) checkActive(userID uint) error {
	var user models.User
	if err := t.DB.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	if !user.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	}
	return nil
}
