// internal/domain/cart/service.go
package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartItemResponse represents a cart item with listing details
type CartItemResponse struct {
	ProductID   uuid.UUID        `json:"product_id"`
	Quantity    int              `json:"quantity"`
	Price       int64            `json:"price"`
	Unavailable bool             `json:"unavailable"` // Listing was sold or withdrawn after being added
	Product     *product.Product `json:"product,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
}

// CartResponse represents a buyer's cart with items and summary
type CartResponse struct {
	UserID    uuid.UUID          `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart retrieves the buyer's cart with listing details and totals
func (s *Service) GetCart(userID uuid.UUID) (*CartResponse, error) {
	var dbItems []CartItem
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&dbItems).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	cartItems := make([]CartItemResponse, len(dbItems))
	updatedAt := time.Now().UTC()
	for i, item := range dbItems {
		cartItems[i] = CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		}
		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	cartItems, err = s.loadProductDetails(cartItems)
	if err != nil {
		return nil, err
	}

	totals := s.calculateTotals(cartItems)

	return &CartResponse{
		UserID:    userID,
		Items:     cartItems,
		Totals:    totals,
		UpdatedAt: updatedAt,
	}, nil
}

// AddToCart adds a listing to the buyer's cart.
// Adding a listing already in the cart leaves the existing row untouched.
func (s *Service) AddToCart(userID uuid.UUID, req *AddToCartRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	// Validate the listing exists and can be bought
	var prod product.Product
	result := s.db.Where("id = ?", req.ProductID).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	if prod.IsOwnedBy(userID) {
		return nil, ErrOwnListing
	}

	if !prod.IsAvailable() {
		return nil, ErrProductUnavailable
	}

	// One row per (user, product); re-adding keeps the existing row
	var existing CartItem
	result = s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		newItem := CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  quantity,
		}
		if err := s.db.Create(&newItem).Error; err != nil {
			return nil, fmt.Errorf("failed to add to cart: %w", err)
		}
	} else if result.Error != nil {
		return nil, fmt.Errorf("failed to check cart: %w", result.Error)
	}

	return s.GetCart(userID)
}

// UpdateCartItem updates the quantity of a cart item.
// A quantity of zero or less removes the item.
func (s *Service) UpdateCartItem(userID, productID uuid.UUID, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity <= 0 {
		return s.RemoveFromCart(userID, productID)
	}

	result := s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", req.Quantity)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}

	return s.GetCart(userID)
}

// RemoveFromCart removes a listing from the cart. Removing an absent
// listing is not an error.
func (s *Service) RemoveFromCart(userID, productID uuid.UUID) (*CartResponse, error) {
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.GetCart(userID)
}

// ClearCart removes all items from the buyer's cart
func (s *Service) ClearCart(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// GetCartItemCount returns the total quantity held in the cart
func (s *Service) GetCartItemCount(userID uuid.UUID) (int, error) {
	var dbItems []CartItem
	if err := s.db.Where("user_id = ?", userID).Find(&dbItems).Error; err != nil {
		return 0, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	totalItems := 0
	for _, item := range dbItems {
		totalItems += item.Quantity
	}

	return totalItems, nil
}

// Private helper methods

// loadProductDetails attaches listing snapshots to cart rows. Rows whose
// listing was hard-deleted since being added are dropped; rows whose listing
// is merely sold or withdrawn stay, flagged unavailable.
func (s *Service) loadProductDetails(cartItems []CartItemResponse) ([]CartItemResponse, error) {
	resolved := cartItems[:0]
	for _, item := range cartItems {
		var prod product.Product
		err := s.db.Preload("Category").
			Where("id = ?", item.ProductID).First(&prod).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		item.Product = &prod
		item.Price = prod.Price
		item.Unavailable = !prod.IsAvailable()
		resolved = append(resolved, item)
	}

	return resolved, nil
}

// calculateTotals sums every resolved row, unavailable ones included
func (s *Service) calculateTotals(cartItems []CartItemResponse) CartTotals {
	var totals CartTotals

	for _, item := range cartItems {
		totals.ItemCount++
		totals.TotalQuantity += item.Quantity
		totals.TotalAmount += item.Price * int64(item.Quantity)
	}

	return totals
}
