// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart errors surfaced to handlers
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("this item is no longer available")
	ErrOwnListing         = errors.New("you cannot add your own listing to the cart")
	ErrItemNotFound       = errors.New("item not found in cart")
)

// CartItem represents one listing in a buyer's cart.
// A buyer holds at most one row per listing.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// BeforeCreate assigns a UUID primary key
func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartTotals represents calculated cart totals.
// Unavailable items are excluded from the amounts.
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of unique items
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	TotalAmount   int64 `json:"total_amount"`   // Total in paise
}
