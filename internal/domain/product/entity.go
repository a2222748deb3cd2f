// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Listing status values
const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusPending  = "pending"
	StatusInactive = "inactive"
)

// Listing condition values
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// Product represents a one-of-a-kind listing posted by a seller
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	Title       string         `gorm:"not null;size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // Price in paise
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Condition   string         `gorm:"size:20;not null" json:"condition"`
	Status      string         `gorm:"size:20;default:'active';index" json:"status"` // active, sold, pending, inactive
	Location    string         `gorm:"size:255" json:"location"`
	IsFeatured  bool           `gorm:"default:false" json:"is_featured"`
	ViewsCount  int            `gorm:"default:0" json:"views_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// Category represents listing categories
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Icon      string    `gorm:"size:100" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// BeforeCreate assigns a UUID primary key
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the listing can still be bought
func (p *Product) IsAvailable() bool {
	return p.Status == StatusActive
}

// IsOwnedBy reports whether the given user posted this listing
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.SellerID == userID
}

// GetFormattedPrice returns the price in rupees
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.Price) / 100
}

// ValidCondition reports whether the condition value is one we accept
func ValidCondition(condition string) bool {
	switch condition {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
