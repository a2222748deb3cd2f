// internal/domain/premium/entity.go
package premium

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Plan represents a premium membership plan on offer
type Plan struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Price        int64          `gorm:"not null" json:"price"` // In paise
	DurationDays int            `gorm:"not null" json:"duration_days"`
	Features     pq.StringArray `gorm:"type:text[]" json:"features"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName overrides the table name
func (Plan) TableName() string {
	return "premium_plans"
}

// BeforeCreate assigns a UUID primary key
func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
