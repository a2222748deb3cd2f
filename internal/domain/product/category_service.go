// internal/domain/product/category_service.go
package product

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// CategoryWithListingCount represents a category with its active listing count
type CategoryWithListingCount struct {
	Category
	ListingCount int64 `json:"listing_count"`
}

// GetCategories retrieves all categories ordered by name
func (s *CategoryService) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetCategoriesWithCounts retrieves categories with their active listing counts
func (s *CategoryService) GetCategoriesWithCounts() ([]CategoryWithListingCount, error) {
	categories, err := s.GetCategories()
	if err != nil {
		return nil, err
	}

	result := make([]CategoryWithListingCount, 0, len(categories))
	for _, category := range categories {
		var count int64
		if err := s.db.Model(&Product{}).
			Where("category_id = ? AND status = ?", category.ID, StatusActive).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count listings: %w", err)
		}
		result = append(result, CategoryWithListingCount{
			Category:     category,
			ListingCount: count,
		})
	}

	return result, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(id uuid.UUID) (*Category, error) {
	var category Category
	result := s.db.Where("id = ?", id).First(&category)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", result.Error)
	}
	return &category, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(req *CategoryCreateRequest) (*Category, error) {
	var existing Category
	if result := s.db.Where("name = ?", req.Name).First(&existing); result.Error == nil {
		return nil, fmt.Errorf("category %s already exists", req.Name)
	}

	category := Category{
		Name: req.Name,
		Icon: req.Icon,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(id uuid.UUID, req *CategoryUpdateRequest) (*Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory deletes a category; its listings keep a null category
func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}
