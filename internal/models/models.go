package models

import (
	"time"
)

const (
	RoleAdmin          = "admin"
	RoleBaker          = "baker"
	RoleDeliveryPerson = "delivery_person"
	RoleCustomer       = "customer"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

const (
	DeliveryStatusPending  = "pending"
	DeliveryStatusAssigned = "assigned"
	DeliveryStatusPickedUp = "picked_up"
	DeliveryStatusDone     = "delivered"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	}
	return false
}

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleBaker, RoleDeliveryPerson, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"unique;not null"           json:"email"`
	Username     string    `gorm:"unique;not null"           json:"username"`
	FullName     string    `gorm:"not null"                  json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	IsActive     bool      `gorm:"not null;default:true"     json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"unique;not null"          json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `gorm:"not null;default:true"    json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `gorm:"not null"                 json:"price"`
	ImageURL      string    `json:"image_url,omitempty"`
	StockQuantity uint      `gorm:"not null;default:0"       json:"stock_quantity"`
	IsAvailable   bool      `gorm:"not null;default:true"    json:"is_available"`
	BakerID       uint      `gorm:"index;not null"           json:"baker_id"`
	CategoryID    uint      `gorm:"index"                    json:"category_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Purchasable gates adding a product to a cart. The availability flag
// and the stock level are independent conditions.
func (p Product) Purchasable() bool {
	return p.IsAvailable && p.StockQuantity > 0
}

type Order struct {
	ID                   uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID           uint       `gorm:"index;not null"           json:"customer_id"`
	TotalAmount          float64    `gorm:"not null"                 json:"total_amount"`
	DeliveryFee          float64    `gorm:"not null"                 json:"delivery_fee"`
	TaxAmount            float64    `gorm:"not null"                 json:"tax_amount"`
	FinalAmount          float64    `gorm:"not null"                 json:"final_amount"`
	Status               string     `gorm:"not null;default:pending" json:"status"`
	PaymentStatus        string     `gorm:"not null;default:pending" json:"payment_status"`
	DeliveryAddress      string     `gorm:"not null"                 json:"delivery_address"`
	DeliveryInstructions string     `json:"delivery_instructions,omitempty"`
	ActualDeliveryTime   *time.Time `json:"actual_delivery_time,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint    `gorm:"index;not null"           json:"order_id"`
	ProductID   uint    `gorm:"not null"                 json:"product_id"`
	ProductName string  `gorm:"not null"                 json:"product_name"`
	Quantity    uint    `gorm:"not null"                 json:"quantity"`
	UnitPrice   float64 `gorm:"not null"                 json:"unit_price"`
	TotalPrice  float64 `gorm:"not null"                 json:"total_price"`
}

type Delivery struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          uint       `gorm:"index;not null"           json:"order_id"`
	DeliveryPersonID *uint      `gorm:"index"                    json:"delivery_person_id,omitempty"`
	Status           string     `gorm:"not null;default:pending" json:"status"`
	DeliveryNotes    string     `json:"delivery_notes,omitempty"`
	PickedUpAt       *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
