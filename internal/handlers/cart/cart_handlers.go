package cart

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	cartpkg "github.com/kslmndz/bakery_shop/internal/cart"
	"github.com/kslmndz/bakery_shop/internal/events"
	"github.com/kslmndz/bakery_shop/internal/logging"
	"github.com/kslmndz/bakery_shop/internal/models"
	"github.com/kslmndz/bakery_shop/internal/pricing"
	"github.com/kslmndz/bakery_shop/internal/service/orders"
	"github.com/kslmndz/bakery_shop/internal/service/token"
)

type CartHandler struct {
	DB       *gorm.DB
	Store    cartpkg.Store
	Producer *events.Producer
}

type cartResponse struct {
	Items       []cartpkg.Line `json:"items"`
	Subtotal    float64        `json:"subtotal"`
	DeliveryFee float64        `json:"delivery_fee"`
	Tax         float64        `json:"tax"`
	Total       float64        `json:"total"`
}

func summarize(c *cartpkg.Cart) cartResponse {
	items := c.Items()
	subtotal := pricing.Subtotal(items)
	return cartResponse{
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: pricing.DeliveryFee(),
		Tax:         pricing.Tax(subtotal),
		Total:       pricing.Total(subtotal),
	}
}

// GetCart returns the session cart with totals, re-clamped against the
// live catalog so stale quantities never exceed current stock.
func (h *CartHandler) GetCart(c echo.Context) error {
	sid := h.sessionID(c)
	ctx := c.Request().Context()

	crt, err := h.Store.Get(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !crt.IsEmpty() {
		ids := make([]uint, 0, len(crt.Lines))
		for id := range crt.Lines {
			ids = append(ids, id)
		}
		var prods []models.Product
		if err := h.DB.Where("id IN ?", ids).Find(&prods).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		live := make(map[uint]models.Product, len(prods))
		for _, p := range prods {
			live[p.ID] = p
		}
		crt.Reclamp(live)
		if err := h.Store.Save(ctx, sid, crt); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, summarize(crt))
}

// AddToCart adds one unit of a product, merging with an existing line.
// Out-of-stock or unavailable products are rejected without touching
// the cart.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var p models.Product
	if err := h.DB.First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sid := h.sessionID(c)
	ctx := c.Request().Context()

	crt, err := h.Store.Get(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !crt.Add(p) {
		return echo.NewHTTPError(http.StatusBadRequest, "product is out of stock")
	}
	if err := h.Store.Save(ctx, sid, crt); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"session":   sid,
		"productID": p.ID,
		"quantity":  crt.Lines[p.ID].Quantity,
	})

	return c.JSON(http.StatusOK, summarize(crt))
}

// UpdateQuantity replaces a line's quantity. Zero or less removes the
// line; anything above current stock is clamped down.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sid := h.sessionID(c)
	ctx := c.Request().Context()

	crt, err := h.Store.Get(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if _, ok := crt.Lines[uint(productID)]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}

	// Refresh the snapshot so the clamp uses live stock.
	var p models.Product
	if err := h.DB.First(&p, productID).Error; err == nil {
		crt.Reclamp(map[uint]models.Product{p.ID: p})
	}

	crt.UpdateQuantity(uint(productID), req.Quantity)
	if err := h.Store.Save(ctx, sid, crt); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_updated",
		"session":   sid,
		"productID": productID,
		"quantity":  req.Quantity,
	})

	return c.JSON(http.StatusOK, summarize(crt))
}

// RemoveFromCart deletes the line; removing an absent item is fine.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	sid := h.sessionID(c)
	ctx := c.Request().Context()

	crt, err := h.Store.Get(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	crt.Remove(uint(productID))
	if err := h.Store.Save(ctx, sid, crt); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"session":   sid,
		"productID": productID,
	})

	return c.JSON(http.StatusOK, summarize(crt))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	sid := h.sessionID(c)
	if err := h.Store.Delete(c.Request().Context(), sid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summarize(cartpkg.New()))
}

// Checkout turns the session cart into an order. An empty cart is
// rejected before any database work. The cart is cleared only after
// the order committed; on failure it stays intact for retry.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, ok := token.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		DeliveryAddress      string `json:"delivery_address"`
		DeliveryInstructions string `json:"delivery_instructions"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DeliveryAddress == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "delivery address is required")
	}

	sid := h.sessionID(c)
	ctx := c.Request().Context()

	crt, err := h.Store.Get(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if crt.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	// Order lines are keyed by product name, matching the historical
	// frontend contract.
	createReq := orders.CreateRequest{
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryInstructions: req.DeliveryInstructions,
	}
	for _, line := range crt.Items() {
		createReq.Items = append(createReq.Items, orders.ItemRequest{
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
		})
	}

	order, items, err := orders.Create(h.DB, userID, createReq)
	if err != nil {
		var verr orders.ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.Store.Delete(ctx, sid); err != nil {
		logging.FromContext(ctx).Error("cart clear after checkout failed", "err", err)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.FinalAmount,
	})

	type checkoutResponse struct {
		models.Order
		Items []models.OrderItem `json:"items"`
	}
	return c.JSON(http.StatusCreated, checkoutResponse{Order: *order, Items: items})
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents,
		fmt.Sprint(event["session"], event["userID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", events.TopicCartEvents, "err", err)
	}
}
