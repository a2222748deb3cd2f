// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod values accepted at checkout
const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// Order errors surfaced to handlers
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrNotOrderParty     = errors.New("you are not a party to this order")
	ErrNotBuyer          = errors.New("only the buyer can cancel an order")
	ErrNotCancellable    = errors.New("only pending orders can be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Order represents a single-listing purchase between a buyer and a seller.
// Amount is the cart quantity times the listing price at purchase time.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber   string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	BuyerID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"seller_id"`
	ProductID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity      int         `gorm:"not null;default:1" json:"quantity"`
	Amount        int64       `gorm:"not null" json:"amount"` // In paise
	PaymentMethod string      `gorm:"size:20;not null;default:'cash'" json:"payment_method"`
	PaymentID     string      `gorm:"size:255" json:"payment_id,omitempty"`
	ShippingAddr  string      `gorm:"type:text;column:shipping_address" json:"shipping_address"`
	Status        OrderStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	// Timestamps
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"size:20;not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uuid.UUID   `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// BeforeCreate assigns a UUID primary key and an order number
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = generateOrderNumber(o.ID)
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// generateOrderNumber builds a human-readable order reference
func generateOrderNumber(id uuid.UUID) string {
	// Format: ORD-YYYYMMDD-XXXXXXXX
	short := id.String()[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), short)
}

// GetFormattedAmount returns the amount in rupees
func (o *Order) GetFormattedAmount() float64 {
	return float64(o.Amount) / 100
}

// CanBeCancelled checks if the order can still be cancelled by the buyer
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// IsParty reports whether the user is the buyer or the seller
func (o *Order) IsParty(userID uuid.UUID) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

// ValidPaymentMethod reports whether the payment method is one we accept
func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodCash || method == PaymentMethodOnline
}
