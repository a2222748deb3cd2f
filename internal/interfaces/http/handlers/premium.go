// internal/interfaces/http/handlers/premium.go
package handlers

import (
	"net/http"
	"time"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/premium"
	"github.com/cubazar/marketplace-backend/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PremiumHandler handles premium plan endpoints
type PremiumHandler struct {
	premiumService *premium.Service
	userService    *user.Service
	config         *config.Config
}

// NewPremiumHandler creates a new premium handler
func NewPremiumHandler(db *gorm.DB, cfg *config.Config) *PremiumHandler {
	return &PremiumHandler{
		premiumService: premium.NewService(db, cfg),
		userService:    user.NewService(db, cfg),
		config:         cfg,
	}
}

// GetPlans handles GET /premium/plans
func (h *PremiumHandler) GetPlans(c *gin.Context) {
	plans, err := h.premiumService.GetPlans()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve plans",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Plans retrieved successfully",
		"data":    plans,
	})
}

// GetPlan handles GET /premium/plans/:id
func (h *PremiumHandler) GetPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid plan ID",
		})
		return
	}

	plan, err := h.premiumService.GetPlan(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Plan retrieved successfully",
		"data":    plan,
	})
}

// AdminGrantPremium handles PUT /admin/users/:id/premium.
// Plan purchases settle offline until online payments launch, so
// premium is granted manually by plan duration.
func (h *PremiumHandler) AdminGrantPremium(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	var req struct {
		PlanID string `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid plan ID",
		})
		return
	}

	plan, err := h.premiumService.GetPlan(planID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, plan.DurationDays)
	if err := h.userService.GrantPremium(userID, expiresAt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Premium granted successfully",
		"data": gin.H{
			"user_id":    userID,
			"plan":       plan.Name,
			"expires_at": expiresAt,
		},
	})
}
