package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/events"
	"github.com/kslmndz/bakery_shop/internal/logging"
	"github.com/kslmndz/bakery_shop/internal/models"
	"github.com/kslmndz/bakery_shop/internal/service/search"
	"github.com/kslmndz/bakery_shop/internal/service/token"
	"github.com/kslmndz/bakery_shop/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Search   *search.Service
	// DefaultBakerID owns products created without an authenticated
	// user. Kept from the original frontend's demo-mode fallback.
	DefaultBakerID uint
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})

	if s := c.QueryParam("search"); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err)
		}
		q = q.Where("category_id = ?", id)
	}
	if raw := c.QueryParam("baker_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err)
		}
		q = q.Where("baker_id = ?", id)
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err)
		}
		q = q.Where("price >= ?", v)
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errorResponse(c, http.StatusBadRequest, err)
		}
		q = q.Where("price <= ?", v)
	}
	if c.QueryParam("in_stock") == "true" {
		q = q.Where("stock_quantity > 0")
	}
	// Listings hide unavailable products unless explicitly asked.
	if c.QueryParam("available_only") != "false" {
		q = q.Where("is_available = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		Price         float64 `json:"price"`
		ImageURL      string  `json:"image_url"`
		StockQuantity uint    `json:"stock_quantity"`
		IsAvailable   *bool   `json:"is_available"`
		CategoryID    uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	// Customers never create products; anonymous requests fall through
	// to the default-baker attribution below.
	if token.Role(c) == models.RoleCustomer {
		return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
	}

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be non-negative")
	}

	if req.CategoryID != 0 {
		var cat models.Category
		if err := h.DB.First(&cat, req.CategoryID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category not found")
		}
	}

	// Anonymous creates are attributed to the default baker account.
	bakerID, ok := token.UserID(c)
	if !ok {
		bakerID = h.DefaultBakerID
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	prod := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsAvailable:   available,
		BakerID:       bakerID,
		CategoryID:    req.CategoryID,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	h.syncIndex(c, prod)
	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(bakerID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.checkOwnership(c, prod); err != nil {
		return err
	}

	var req struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		ImageURL      *string  `json:"image_url"`
		StockQuantity *uint    `json:"stock_quantity"`
		IsAvailable   *bool    `json:"is_available"`
		CategoryID    *uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be non-negative")
		}
		prod.Price = *req.Price
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.StockQuantity != nil {
		prod.StockQuantity = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		prod.IsAvailable = *req.IsAvailable
	}
	if req.CategoryID != nil {
		var cat models.Category
		if err := h.DB.First(&cat, *req.CategoryID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category not found")
		}
		prod.CategoryID = *req.CategoryID
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	h.syncIndex(c, prod)
	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(prod.BakerID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.checkOwnership(c, prod); err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if h.Search != nil {
		ctx := c.Request().Context()
		if err := h.Search.DeleteProduct(ctx, uint(id)); err != nil {
			logging.FromContext(ctx).Error("search deindex failed", "productID", id, "err", err)
		}
	}
	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(prod.BakerID), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// UpdateStock applies a signed stock adjustment. Availability follows
// the stock level, matching the ordering flow's decrement rule.
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	change, err := strconv.Atoi(c.QueryParam("change"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "change query parameter is required")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.checkOwnership(c, prod); err != nil {
		return err
	}

	newStock := int(prod.StockQuantity) + change
	if newStock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "insufficient stock")
	}

	prod.StockQuantity = uint(newStock)
	prod.IsAvailable = newStock > 0
	if err := h.DB.Save(&prod).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	h.syncIndex(c, prod)
	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(prod.BakerID), map[string]any{
		"type":      "stock_updated",
		"productID": prod.ID,
		"stock":     prod.StockQuantity,
	})

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) MyProducts(c echo.Context) error {
	bakerID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var items []models.Product
	if err := h.DB.Where("baker_id = ?", bakerID).Order("id ASC").Find(&items).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Bakers may only touch their own products; admin may touch any.
func (h *ProductHandler) checkOwnership(c echo.Context, prod models.Product) error {
	role := token.Role(c)
	if role == models.RoleAdmin {
		return nil
	}
	if uid, ok := token.UserID(c); ok && uid == prod.BakerID {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
}

func (h *ProductHandler) syncIndex(c echo.Context, prod models.Product) {
	if h.Search == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Search.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("search index failed", "productID", prod.ID, "err", err)
	}
}
