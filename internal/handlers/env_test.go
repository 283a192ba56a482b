package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/hash"
	"github.com/kslmndz/bakery_shop/internal/models"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.RefreshToken{},
	))

	return &testEnv{T: t, E: echo.New(), DB: db}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser mimics what the auth middleware puts into the context.
func asUser(c echo.Context, id uint, role string) {
	c.Set("userID", id)
	c.Set("role", role)
}

func (env *testEnv) seedUser(username, role string) models.User {
	pw, err := hash.HashPassword("test_password")
	require.NoError(env.T, err)

	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FullName:     "Test " + username,
		PasswordHash: pw,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) seedProduct(name string, price float64, stock uint, bakerID uint) models.Product {
	p := models.Product{
		Name:          name,
		Description:   "test product",
		Price:         price,
		StockQuantity: stock,
		IsAvailable:   stock > 0,
		BakerID:       bakerID,
	}
	require.NoError(env.T, env.DB.Create(&p).Error)
	// gorm drops a zero-value IsAvailable on Create because the column
	// has default:true; write it explicitly so the seed matches intent.
	require.NoError(env.T, env.DB.Model(&p).Update("is_available", stock > 0).Error)
	p.IsAvailable = stock > 0
	return p
}
