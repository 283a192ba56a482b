package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/events"
	"github.com/kslmndz/bakery_shop/internal/models"
	"github.com/kslmndz/bakery_shop/internal/service/orders"
	"github.com/kslmndz/bakery_shop/internal/service/token"
	"github.com/kslmndz/bakery_shop/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type orderResponse struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

func (h *OrderHandler) withItems(order models.Order) (orderResponse, error) {
	var items []models.OrderItem
	if err := h.DB.Where("order_id = ?", order.ID).Order("id ASC").Find(&items).Error; err != nil {
		return orderResponse{}, err
	}
	return orderResponse{Order: order, Items: items}, nil
}

// GetOrders lists orders. Admin sees everything with optional status
// and customer filters; everyone else sees only their own.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Order{})
	if token.Role(c) == models.RoleAdmin {
		if status := c.QueryParam("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if raw := c.QueryParam("customer_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return errorResponse(c, http.StatusBadRequest, err)
			}
			q = q.Where("customer_id = ?", id)
		}
	} else {
		q = q.Where("customer_id = ?", userID)
	}

	var list []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	resp := make([]orderResponse, 0, len(list))
	for _, o := range list {
		r, err := h.withItems(o)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	userID, _ := token.UserID(c)
	if order.CustomerID != userID && token.Role(c) != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
	}

	resp, err := h.withItems(order)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateOrder is the direct order API: name-keyed items plus delivery
// details. Checkout from the session cart goes through the same
// orders.Create path.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req orders.CreateRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	order, items, err := orders.Create(h.DB, userID, req)
	if err != nil {
		var verr orders.ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.FinalAmount,
	})

	return c.JSON(http.StatusCreated, orderResponse{Order: *order, Items: items})
}

// UpdateStatus moves an order through its lifecycle. Staff roles may
// set any valid status; customers may only cancel their own pending
// orders.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	newStatus := c.QueryParam("status")
	if !models.ValidOrderStatus(newStatus) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	userID, _ := token.UserID(c)
	switch token.Role(c) {
	case models.RoleAdmin, models.RoleBaker, models.RoleDeliveryPerson:
	case models.RoleCustomer:
		if order.CustomerID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
		}
		if newStatus != models.OrderStatusCancelled {
			return echo.NewHTTPError(http.StatusForbidden, "customers can only cancel orders")
		}
		if order.Status != models.OrderStatusPending {
			return echo.NewHTTPError(http.StatusBadRequest, "can only cancel pending orders")
		}
	default:
		return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
	}

	order.Status = newStatus
	if newStatus == models.OrderStatusDelivered {
		now := time.Now()
		order.ActualDeliveryTime = &now
	}
	if err := h.DB.Save(&order).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(order.CustomerID), map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	resp, err := h.withItems(order)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var list []models.Order
	if err := h.DB.Where("customer_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	resp := make([]orderResponse, 0, len(list))
	for _, o := range list {
		r, err := h.withItems(o)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, err)
		}
		resp = append(resp, r)
	}
	return c.JSON(http.StatusOK, resp)
}
