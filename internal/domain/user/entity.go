// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values for marketplace accounts
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a marketplace account together with its public profile
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password         string     `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	FullName         string     `gorm:"size:200;not null" json:"full_name"`
	Phone            string     `gorm:"size:20" json:"phone"`
	CollegeName      string     `gorm:"size:200" json:"college_name"`
	AvatarURL        string     `gorm:"size:500" json:"avatar_url"`
	Role             string     `gorm:"size:20;default:'user';index" json:"role"` // user, moderator, admin
	IsPremium        bool       `gorm:"default:false" json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	EmailVerified    bool       `gorm:"default:false" json:"email_verified"`
	LastLoginAt      *time.Time `json:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}

// IsStaff returns true for moderator and admin accounts
func (u *User) IsStaff() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// HasActivePremium reports whether the premium membership is currently active
func (u *User) HasActivePremium() bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return u.PremiumExpiresAt.After(time.Now().UTC())
}

// GetDisplayName returns display name (full name or email)
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}
