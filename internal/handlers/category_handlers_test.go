package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kslmndz/bakery_shop/internal/models"
)

func (env *testEnv) seedCategory(name string, active bool) models.Category {
	cat := models.Category{Name: name, IsActive: active}
	require.NoError(env.T, env.DB.Create(&cat).Error)
	// gorm drops a zero-value IsActive on Create because the column has
	// default:true; write it explicitly so the seed matches intent.
	require.NoError(env.T, env.DB.Model(&cat).Update("is_active", active).Error)
	cat.IsActive = active
	return cat
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{DB: env.DB}
	env.seedCategory("Breads", true)

	body := map[string]string{"name": "Breads"}
	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/categories", body)
	err := h.CreateCategory(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestGetCategoriesActiveOnly(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{DB: env.DB}
	env.seedCategory("Breads", true)
	env.seedCategory("Cakes", true)
	env.seedCategory("Seasonal", false)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/categories", nil)
	require.NoError(t, h.GetCategories(c))

	var list []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)

	rec, c = env.doJSONRequest(http.MethodGet, "/api/v1/categories?active_only=false", nil)
	require.NoError(t, h.GetCategories(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
}

func TestPatchCategoryRenameCollision(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{DB: env.DB}
	env.seedCategory("Breads", true)
	env.seedCategory("Cakes", true)

	body := map[string]string{"name": "Cakes"}
	_, c := env.doJSONRequest(http.MethodPatch, "/api/v1/categories/1", body)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.Error(t, h.PatchCategory(c))
}

func TestDeleteCategoryWithProductsRefused(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{DB: env.DB}
	baker := env.seedUser("baker", models.RoleBaker)
	cat := env.seedCategory("Breads", true)

	p := env.seedProduct("Pandesal", 10, 50, baker.ID)
	require.NoError(t, env.DB.Model(&p).Update("category_id", cat.ID).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/api/v1/categories/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.DeleteCategory(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot delete category")
}

func TestDeleteEmptyCategory(t *testing.T) {
	env := newTestEnv(t)
	h := &CategoryHandler{DB: env.DB}
	env.seedCategory("Breads", true)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/v1/categories/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteCategory(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	env.DB.Model(&models.Category{}).Count(&count)
	require.Zero(t, count)
}
