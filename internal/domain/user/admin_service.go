// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

// AdminService handles staff-side account management
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents account list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // user, moderator, admin
	Premium   *bool  `form:"premium"`
	College   string `form:"college"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents account list with pagination
type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// UserStats represents aggregate account counts for the admin dashboard
type UserStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Premium  int64 `json:"premium"`
	Verified int64 `json:"verified"`
	Staff    int64 `json:"staff"`
}

// GetUsers retrieves accounts with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&User{})

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(full_name) LIKE ? OR phone LIKE ?",
			search, search, "%"+req.Search+"%",
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case RoleUser, RoleModerator, RoleAdmin:
		query = query.Where("role = ?", req.Role)
	}

	if req.Premium != nil {
		query = query.Where("is_premium = ?", *req.Premium)
	}

	if req.College != "" {
		query = query.Where("LOWER(college_name) LIKE ?", "%"+strings.ToLower(req.College)+"%")
	}

	if req.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", req.DateFrom); err == nil {
			query = query.Where("created_at >= ?", from)
		}
	}
	if req.DateTo != "" {
		if to, err := time.Parse("2006-01-02", req.DateTo); err == nil {
			query = query.Where("created_at < ?", to.Add(24*time.Hour))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query = query.Order(s.buildOrderClause(req.SortBy, req.SortOrder))

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	for i := range users {
		users[i].Password = ""
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      users,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUserStats retrieves aggregate account counts
func (s *AdminService) GetUserStats() (*UserStats, error) {
	var stats UserStats

	counts := []struct {
		dest  *int64
		where []interface{}
	}{
		{&stats.Total, nil},
		{&stats.Active, []interface{}{"is_active = ?", true}},
		{&stats.Premium, []interface{}{"is_premium = ?", true}},
		{&stats.Verified, []interface{}{"email_verified = ?", true}},
		{&stats.Staff, []interface{}{"role IN ?", []string{RoleModerator, RoleAdmin}}},
	}

	for _, c := range counts {
		query := s.db.Model(&User{})
		if c.where != nil {
			query = query.Where(c.where[0], c.where[1:]...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
	}

	return &stats, nil
}

// SetRole changes an account's role; admin only, enforced by the caller
func (s *AdminService) SetRole(userID uuid.UUID, role string) error {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
	default:
		return fmt.Errorf("invalid role: %s", role)
	}

	result := s.db.Model(&User{}).
		Where("id = ?", userID).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// buildOrderClause maps a sort request to a whitelisted ORDER BY clause
func (s *AdminService) buildOrderClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "email", "full_name", "created_at", "last_login_at":
	default:
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + strings.ToUpper(sortOrder)
}
