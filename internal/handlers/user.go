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
	"github.com/kslmndz/bakery_shop/internal/service/token"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	q := h.DB.Model(&models.User{})
	if role := c.QueryParam("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Order("id ASC").Find(&users).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if token.Role(c) != models.RoleAdmin {
		if uid, _ := token.UserID(c); uid != uint(id) {
			return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
		}
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, user)
}

// PatchUser updates the editable profile fields. Users edit their own
// profile; admin edits anyone and is the only role that may change
// another user's role.
func (h *UserHandler) PatchUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	isAdmin := token.Role(c) == models.RoleAdmin
	if !isAdmin {
		if uid, _ := token.UserID(c); uid != uint(id) {
			return echo.NewHTTPError(http.StatusForbidden, "not enough permissions")
		}
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var req struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		FullName *string `json:"full_name"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
		Role     *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if req.Email != nil && *req.Email != user.Email {
		var existing models.User
		if err := h.DB.Where("email = ?", *req.Email).First(&existing).Error; err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		}
		user.Email = *req.Email
	}
	if req.Username != nil && *req.Username != user.Username {
		var existing models.User
		if err := h.DB.Where("username = ?", *req.Username).First(&existing).Error; err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "username already taken")
		}
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Role != nil {
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "only admin can change roles")
		}
		if !models.ValidRole(*req.Role) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		user.Role = *req.Role
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, user)
}

// DeactivateUser flips is_active off. The record survives; activation
// reverses it. Admin cannot deactivate their own account.
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if uid, _ := token.UserID(c); uid == uint(id) {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	return h.setActive(c, uint(id), false)
}

func (h *UserHandler) ActivateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	return h.setActive(c, uint(id), true)
}

func (h *UserHandler) setActive(c echo.Context, id uint, active bool) error {
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	if err := h.DB.Model(&user).Update("is_active", active).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	user.IsActive = active

	eventType := "user_deactivated"
	if active {
		eventType = "user_activated"
	}
	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   eventType,
		"userID": user.ID,
	})

	return c.JSON(http.StatusOK, user)
}
