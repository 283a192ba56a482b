package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/events"
	"github.com/kslmndz/bakery_shop/internal/models"
)

type CategoryHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	q := h.DB.Model(&models.Category{})
	if c.QueryParam("active_only") != "false" {
		q = q.Where("is_active = ?", true)
	}

	var items []models.Category
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	var existing models.Category
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "category name already exists")
	}

	cat := models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := h.DB.Create(&cat).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(cat.ID), map[string]any{
		"type":       "category_created",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})

	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) PatchCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name != nil && *req.Name != cat.Name {
		var existing models.Category
		if err := h.DB.Where("name = ?", *req.Name).First(&existing).Error; err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category name already exists")
		}
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.ImageURL != nil {
		cat.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&cat).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var productCount int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if productCount > 0 {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("cannot delete category with %d products", productCount))
	}

	if err := h.DB.Delete(&models.Category{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.NoContent(http.StatusNoContent)
}
