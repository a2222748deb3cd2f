// internal/domain/checkout/service.go
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/cart"
	"github.com/cubazar/marketplace-backend/internal/domain/order"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

// Checkout errors surfaced to handlers
var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingAddress        = errors.New("shipping address is required")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrOnlinePaymentsPending = errors.New("online payments are coming soon, please use cash on delivery")
	ErrOwnListing            = errors.New("you cannot buy your own listing")
)

// ItemsUnavailableError reports listings that were sold or withdrawn
// between adding to cart and checking out.
type ItemsUnavailableError struct {
	Titles []string
}

func (e *ItemsUnavailableError) Error() string {
	return fmt.Sprintf("items no longer available: %s", strings.Join(e.Titles, ", "))
}

// Service handles checkout business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		cartService: cart.NewService(db, redisClient, cfg),
	}
}

// CheckoutRequest represents a checkout submission
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

// CheckoutResult represents the outcome of a successful checkout
type CheckoutResult struct {
	OrderIDs    []uuid.UUID `json:"order_ids"`
	TotalAmount int64       `json:"total_amount"`
}

// PaymentOption represents an available payment method
type PaymentOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// CheckoutSummary represents the pre-checkout review screen
type CheckoutSummary struct {
	Cart           *cart.CartResponse `json:"cart"`
	TotalAmount    int64              `json:"total_amount"`
	PaymentMethods []PaymentOption    `json:"payment_methods"`
}

// GetCheckoutSummary builds the review screen for a buyer's cart
func (s *Service) GetCheckoutSummary(userID uuid.UUID) (*CheckoutSummary, error) {
	cartResponse, err := s.cartService.GetCart(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	return &CheckoutSummary{
		Cart:           cartResponse,
		TotalAmount:    cartResponse.Totals.TotalAmount,
		PaymentMethods: s.GetPaymentMethods(),
	}, nil
}

// GetPaymentMethods returns the payment options shown at checkout
func (s *Service) GetPaymentMethods() []PaymentOption {
	return []PaymentOption{
		{
			ID:          order.PaymentMethodCash,
			Name:        "Cash on Delivery",
			Description: "Pay the seller in person when you receive the item",
			Available:   true,
		},
		{
			ID:          order.PaymentMethodOnline,
			Name:        "Pay Online",
			Description: "Coming soon",
			Available:   false,
		},
	}
}

// ProcessCheckout turns the buyer's cart into orders, one per listing.
// The whole batch succeeds or fails together: every listing is claimed
// inside one transaction, and any listing that was sold or withdrawn in
// the meantime aborts the entire checkout with nothing written.
func (s *Service) ProcessCheckout(userID uuid.UUID, req *CheckoutRequest) (*CheckoutResult, error) {
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, ErrMissingAddress
	}

	if !order.ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	// Online payments are offered in the UI but not live yet. Nothing is
	// written for them.
	if req.PaymentMethod == order.PaymentMethodOnline {
		return nil, ErrOnlinePaymentsPending
	}

	var cartItems []cart.CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&cartItems).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	var result *CheckoutResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var orderIDs []uuid.UUID
		var totalAmount int64
		var unavailable []string

		for _, item := range cartItems {
			var prod product.Product
			findErr := tx.Where("id = ?", item.ProductID).First(&prod).Error
			if findErr != nil {
				if findErr == gorm.ErrRecordNotFound {
					unavailable = append(unavailable, "a removed listing")
					continue
				}
				return fmt.Errorf("failed to load listing: %w", findErr)
			}

			if prod.IsOwnedBy(userID) {
				return ErrOwnListing
			}

			// Conditional claim: mark the listing sold only if it is still
			// active. A zero row count means someone else got there first.
			claim := tx.Model(&product.Product{}).
				Where("id = ? AND status = ?", prod.ID, product.StatusActive).
				Update("status", product.StatusSold)
			if claim.Error != nil {
				return fmt.Errorf("failed to claim listing: %w", claim.Error)
			}
			if claim.RowsAffected == 0 {
				unavailable = append(unavailable, prod.Title)
				continue
			}

			// Amount locks in the listing price at purchase time
			amount := prod.Price * int64(item.Quantity)

			newOrder := order.Order{
				BuyerID:       userID,
				SellerID:      prod.SellerID,
				ProductID:     prod.ID,
				Quantity:      item.Quantity,
				Amount:        amount,
				PaymentMethod: req.PaymentMethod,
				ShippingAddr:  req.ShippingAddress,
				Status:        order.OrderStatusPending,
			}

			if err := tx.Create(&newOrder).Error; err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}

			history := order.OrderStatusHistory{
				OrderID:   newOrder.ID,
				Status:    order.OrderStatusPending,
				Comment:   "Order placed",
				CreatedBy: userID,
			}
			if err := tx.Create(&history).Error; err != nil {
				return fmt.Errorf("failed to create status history: %w", err)
			}

			orderIDs = append(orderIDs, newOrder.ID)
			totalAmount += amount
		}

		// Any conflict aborts the whole batch so the buyer sees exactly
		// which listings to drop before retrying.
		if len(unavailable) > 0 {
			return &ItemsUnavailableError{Titles: unavailable}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		result = &CheckoutResult{
			OrderIDs:    orderIDs,
			TotalAmount: totalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"buyer_id":     userID,
		"order_count":  len(result.OrderIDs),
		"total_amount": result.TotalAmount,
	}).Info("Checkout completed")

	return result, nil
}
