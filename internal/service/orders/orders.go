package orders

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/models"
	"github.com/kslmndz/bakery_shop/internal/pricing"
)

// ValidationError marks order input the customer can correct. Handlers
// map it to a 400; any other failure from Create is internal.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrEmptyOrder     = ValidationError("no items in order")
	ErrMissingAddress = ValidationError("delivery address is required")
)

// ItemRequest keys the line by product name, not id. The frontend has
// always sent names; the service resolves them by exact match and
// rejects unknown ones.
type ItemRequest struct {
	ProductName string `json:"product_name"`
	Quantity    uint   `json:"quantity"`
}

type CreateRequest struct {
	DeliveryAddress      string        `json:"delivery_address"`
	DeliveryInstructions string        `json:"delivery_instructions,omitempty"`
	Items                []ItemRequest `json:"items"`
}

// Create validates stock, prices the order and persists order, items,
// stock decrements and the pending delivery row in one transaction.
// Either everything commits or nothing does.
func Create(db *gorm.DB, customerID uint, req CreateRequest) (*models.Order, []models.OrderItem, error) {
	if req.DeliveryAddress == "" {
		return nil, nil, ErrMissingAddress
	}
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}

	var (
		order models.Order
		items []models.OrderItem
	)

	txErr := db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		items = make([]models.OrderItem, 0, len(req.Items))

		for _, it := range req.Items {
			if it.Quantity < 1 {
				return ValidationError(fmt.Sprintf("invalid quantity for %q", it.ProductName))
			}

			var p models.Product
			if err := tx.Where("name = ?", it.ProductName).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ValidationError(fmt.Sprintf("product %q not found", it.ProductName))
				}
				return err
			}
			if !p.IsAvailable || p.StockQuantity < it.Quantity {
				return ValidationError("insufficient stock for product " + p.Name)
			}

			lineTotal := p.Price * float64(it.Quantity)
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   p.Price,
				TotalPrice:  lineTotal,
			})

			newStock := p.StockQuantity - it.Quantity
			updates := map[string]interface{}{
				"stock_quantity": newStock,
				"is_available":   newStock > 0,
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		order = models.Order{
			CustomerID:           customerID,
			TotalAmount:          subtotal,
			DeliveryFee:          pricing.DeliveryFee(),
			TaxAmount:            pricing.Tax(subtotal),
			FinalAmount:          pricing.Total(subtotal),
			Status:               models.OrderStatusPending,
			PaymentStatus:        models.PaymentStatusPending,
			DeliveryAddress:      req.DeliveryAddress,
			DeliveryInstructions: req.DeliveryInstructions,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}

		delivery := models.Delivery{
			OrderID: order.ID,
			Status:  models.DeliveryStatusPending,
		}
		return tx.Create(&delivery).Error
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	return &order, items, nil
}
