package token

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/models"
)

func (svc *TokenService) seedAccount(t *testing.T, username, role string, active bool) models.User {
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: "x",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, svc.DB.Create(&user).Error)
	// gorm drops a zero-value IsActive on Create because the column has
	// default:true; write it explicitly so the seed matches intent.
	require.NoError(t, svc.DB.Model(&user).Update("is_active", active).Error)
	user.IsActive = active
	return user
}

func contextWithAccessCookie(t *testing.T, svc *TokenService, userID uint, role string) echo.Context {
	access, err := SignAccessToken(userID, role, svc.JWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: access})
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

func nextCapture(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return nil
	}
}

func TestOptionalAuthSetsContext(t *testing.T) {
	svc := newService(t)
	user := svc.seedAccount(t, "baker", models.RoleBaker, true)
	c := contextWithAccessCookie(t, svc, user.ID, user.Role)

	var called bool
	require.NoError(t, svc.OptionalAuth(nextCapture(&called))(c))
	require.True(t, called)

	id, ok := UserID(c)
	require.True(t, ok)
	require.Equal(t, user.ID, id)
	require.Equal(t, models.RoleBaker, Role(c))
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	svc := newService(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	var called bool
	require.NoError(t, svc.OptionalAuth(nextCapture(&called))(c))
	require.True(t, called)

	_, ok := UserID(c)
	require.False(t, ok)
}

func TestOptionalAuthRejectsDeactivatedAccount(t *testing.T) {
	svc := newService(t)
	user := svc.seedAccount(t, "baker", models.RoleBaker, false)
	c := contextWithAccessCookie(t, svc, user.ID, user.Role)

	var called bool
	err := svc.OptionalAuth(nextCapture(&called))(c)
	require.Error(t, err)
	require.False(t, called)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestRequireAuthRejectsDeactivatedAccount(t *testing.T) {
	svc := newService(t)
	user := svc.seedAccount(t, "maria", models.RoleCustomer, false)
	c := contextWithAccessCookie(t, svc, user.ID, user.Role)

	var called bool
	err := svc.RequireAuth(nextCapture(&called))(c)
	require.Error(t, err)
	require.False(t, called)
}

func TestRequireRole(t *testing.T) {
	svc := newService(t)

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("userID", uint(1))
	c.Set("role", models.RoleCustomer)

	var called bool
	err := svc.RequireRole(models.RoleAdmin)(nextCapture(&called))(c)
	require.Error(t, err)
	require.False(t, called)

	require.NoError(t, svc.RequireRole(models.RoleAdmin, models.RoleCustomer)(nextCapture(&called))(c))
	require.True(t, called)
}
