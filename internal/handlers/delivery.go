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
	"github.com/kslmndz/bakery_shop/internal/service/token"
)

type DeliveryHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// GetDeliveries lists deliveries. Admin sees all (optionally filtered
// by status); a delivery person sees only their assignments.
func (h *DeliveryHandler) GetDeliveries(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	q := h.DB.Model(&models.Delivery{})
	if token.Role(c) == models.RoleAdmin {
		if status := c.QueryParam("status"); status != "" {
			q = q.Where("status = ?", status)
		}
	} else {
		q = q.Where("delivery_person_id = ?", userID)
	}

	var list []models.Delivery
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, list)
}

// AssignDelivery hands a pending delivery to a delivery person.
func (h *DeliveryHandler) AssignDelivery(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		DeliveryPersonID uint `json:"delivery_person_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var person models.User
	if err := h.DB.First(&person, req.DeliveryPersonID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "delivery person not found")
	}
	if person.Role != models.RoleDeliveryPerson {
		return echo.NewHTTPError(http.StatusBadRequest, "user is not a delivery person")
	}

	var delivery models.Delivery
	if err := h.DB.First(&delivery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "delivery not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	delivery.DeliveryPersonID = &req.DeliveryPersonID
	delivery.Status = models.DeliveryStatusAssigned
	if err := h.DB.Save(&delivery).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(delivery.OrderID), map[string]any{
		"type":       "delivery_assigned",
		"deliveryID": delivery.ID,
		"personID":   req.DeliveryPersonID,
	})

	return c.JSON(http.StatusOK, delivery)
}

// UpdateStatus advances a delivery, stamping pickup/delivery times.
func (h *DeliveryHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	newStatus := c.QueryParam("status")
	switch newStatus {
	case models.DeliveryStatusAssigned, models.DeliveryStatusPickedUp, models.DeliveryStatusDone:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var delivery models.Delivery
	if err := h.DB.First(&delivery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "delivery not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if token.Role(c) != models.RoleAdmin {
		userID, _ := token.UserID(c)
		if delivery.DeliveryPersonID == nil || *delivery.DeliveryPersonID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
		}
	}

	delivery.Status = newStatus
	if notes := c.QueryParam("notes"); notes != "" {
		delivery.DeliveryNotes = notes
	}
	now := time.Now()
	switch newStatus {
	case models.DeliveryStatusPickedUp:
		delivery.PickedUpAt = &now
	case models.DeliveryStatusDone:
		delivery.DeliveredAt = &now
	}

	if err := h.DB.Save(&delivery).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(delivery.OrderID), map[string]any{
		"type":       "delivery_status_updated",
		"deliveryID": delivery.ID,
		"status":     delivery.Status,
	})

	return c.JSON(http.StatusOK, delivery)
}
