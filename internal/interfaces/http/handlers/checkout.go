// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/checkout"
	"github.com/cubazar/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkout.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// GetCheckoutSummary handles GET /checkout
func (h *CheckoutHandler) GetCheckoutSummary(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	summary, err := h.checkoutService.GetCheckoutSummary(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build checkout summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment methods retrieved successfully",
		"data":    h.checkoutService.GetPaymentMethods(),
	})
}

// ProcessCheckout handles POST /checkout
func (h *CheckoutHandler) ProcessCheckout(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkoutService.ProcessCheckout(userID, &req)
	if err != nil {
		// Listings claimed by another buyer abort the whole batch
		var unavailable *checkout.ItemsUnavailableError
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Some items are no longer available",
				"unavailable_items": unavailable.Titles,
			})
			return
		}

		c.JSON(checkoutErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// checkoutErrorStatus maps checkout domain errors to HTTP status codes
func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrOwnListing):
		return http.StatusForbidden
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingAddress),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrOnlinePaymentsPending):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
