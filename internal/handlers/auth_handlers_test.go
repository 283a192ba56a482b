package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/models"
)

func newAuthHandler(env *testEnv) *AuthHandler {
	return &AuthHandler{
		DB:            env.DB,
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)

	register := map[string]string{
		"email":     "maria@example.com",
		"username":  "maria",
		"full_name": "Maria Santos",
		"password":  "secret123",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", register)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, models.RoleCustomer, created.Role)
	require.True(t, created.IsActive)

	login := map[string]string{"email": "maria@example.com", "password": "secret123"}
	rec, c = env.doJSONRequest(http.MethodPost, "/api/v1/login", login)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	env.seedUser("maria", models.RoleCustomer)

	register := map[string]string{
		"email":    "maria@example.com",
		"username": "maria",
		"password": "secret123",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/register", register)
	err := h.Register(c)
	require.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	env.seedUser("maria", models.RoleCustomer)

	login := map[string]string{"email": "maria@example.com", "password": "wrong"}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", login)
	require.Error(t, h.Login(c))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(env)
	user := env.seedUser("maria", models.RoleCustomer)
	require.NoError(t, env.DB.Model(&user).Update("is_active", false).Error)

	login := map[string]string{"email": "maria@example.com", "password": "test_password"}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/login", login)
	err := h.Login(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "deactivated")
}
