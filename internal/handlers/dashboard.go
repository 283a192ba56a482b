package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

type dashboardStats struct {
	TotalOrders         int64            `json:"total_orders"`
	TotalRevenue        float64          `json:"total_revenue"`
	TotalCustomers      int64            `json:"total_customers"`
	PendingOrders       int64            `json:"pending_orders"`
	CompletedOrders     int64            `json:"completed_orders"`
	CompletedDeliveries int64            `json:"completed_deliveries"`
	RecentOrders        []models.Order   `json:"recent_orders"`
	TopProducts         []models.Product `json:"top_products"`
}

// GetStats aggregates the admin dashboard numbers. Revenue counts only
// delivered orders.
func (h *DashboardHandler) GetStats(c echo.Context) error {
	var stats dashboardStats

	if err := h.DB.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.User{}).
		Where("role = ?", models.RoleCustomer).
		Count(&stats.TotalCustomers).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Count(&stats.CompletedOrders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if err := h.DB.Model(&models.Delivery{}).
		Where("status = ?", models.DeliveryStatusDone).
		Count(&stats.CompletedDeliveries).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var revenue *float64
	if err := h.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Select("SUM(final_amount)").
		Scan(&revenue).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	if revenue != nil {
		stats.TotalRevenue = *revenue
	}

	if err := h.DB.Order("created_at DESC").Limit(5).Find(&stats.RecentOrders).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.DB.Model(&models.Product{}).
		Select("products.*").
		Joins("JOIN order_items ON order_items.product_id = products.id").
		Group("products.id").
		Order("SUM(order_items.quantity) DESC").
		Limit(5).
		Find(&stats.TopProducts).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, stats)
}
