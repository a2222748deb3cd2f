// internal/domain/premium/service.go
package premium

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

// Service handles premium plan business logic.
// Purchasing a plan is not wired up yet; plans are a read-only catalog
// until online payments go live.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new premium service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetPlans retrieves the active premium plans, cheapest first
func (s *Service) GetPlans() ([]Plan, error) {
	var plans []Plan
	err := s.db.Where("is_active = ?", true).
		Order("price ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve plans: %w", err)
	}
	return plans, nil
}

// GetPlan retrieves a single plan by ID
func (s *Service) GetPlan(id uuid.UUID) (*Plan, error) {
	var plan Plan
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&plan)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("plan not found")
		}
		return nil, fmt.Errorf("failed to retrieve plan: %w", result.Error)
	}
	return &plan, nil
}
