// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

// Service handles listing business logic
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// ProductListRequest represents listing browse query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID string `form:"category_id"`
	Search     string `form:"search"`
	Condition  string `form:"condition"`
	Location   string `form:"location"`
	SortBy     string `form:"sort_by,default=newest"` // newest, oldest, price_asc, price_desc, popular
	MinPrice   int64  `form:"min_price"`
	MaxPrice   int64  `form:"max_price"`
}

// ProductCreateRequest represents listing creation data
type ProductCreateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" binding:"required"`
	CategoryID  string   `json:"category_id"`
	Images      []string `json:"images"`
	Condition   string   `json:"condition" binding:"required"`
	Location    string   `json:"location"`
}

// ProductUpdateRequest represents listing update data
type ProductUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *int64    `json:"price"`
	CategoryID  *string   `json:"category_id"`
	Images      *[]string `json:"images"`
	Condition   *string   `json:"condition"`
	Location    *string   `json:"location"`
	Status      *string   `json:"status"`
}

// ProductResponse represents listing response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves active listings with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	// Only active listings are browsable
	query := s.db.Model(&Product{}).
		Preload("Category").
		Where("status = ?", StatusActive)

	// Apply filters
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id")
		}
		query = query.Where("category_id = ?", categoryID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.Condition != "" {
		query = query.Where("condition = ?", req.Condition)
	}

	if req.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(req.Location)+"%")
	}

	if req.MinPrice > 0 {
		query = query.Where("price >= ?", req.MinPrice)
	}

	if req.MaxPrice > 0 {
		query = query.Where("price <= ?", req.MaxPrice)
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting
	query = query.Order(s.buildOrderClause(req.SortBy))

	// Apply pagination
	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	// Calculate pagination info
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination,
	}, nil
}

// GetFeaturedProducts retrieves the featured listing feed
func (s *Service) GetFeaturedProducts() ([]Product, error) {
	var products []Product
	err := s.db.
		Preload("Category").
		Where("status = ? AND is_featured = ?", StatusActive, true).
		Order("created_at DESC").
		Limit(s.config.Marketplace.FeaturedLimit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve featured products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single listing by ID
func (s *Service) GetProduct(id uuid.UUID) (*Product, error) {
	var product Product
	result := s.db.
		Preload("Category").
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// RecordView bumps the view counter for a listing.
// Repeat views from the same viewer inside the dedup window are ignored,
// and sellers viewing their own listing are never counted.
func (s *Service) RecordView(ctx context.Context, productID uuid.UUID, viewerKey string) error {
	if s.redis != nil && viewerKey != "" {
		key := fmt.Sprintf("product:view:%s:%s", productID, viewerKey)
		set, err := s.redis.SetNX(ctx, key, 1, s.config.Marketplace.ViewDedupWindow).Result()
		if err == nil && !set {
			return nil
		}
		// On redis failure fall through and count the view
	}

	return s.db.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// GetMyListings retrieves all listings posted by a seller, any status
func (s *Service) GetMyListings(sellerID uuid.UUID) ([]Product, error) {
	var products []Product
	err := s.db.
		Preload("Category").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve listings: %w", err)
	}
	return products, nil
}

// CreateProduct creates a new listing for a seller
func (s *Service) CreateProduct(sellerID uuid.UUID, req *ProductCreateRequest) (*Product, error) {
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if !ValidCondition(req.Condition) {
		return nil, fmt.Errorf("invalid condition: %s", req.Condition)
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id")
		}
		var category Category
		if result := s.db.Where("id = ?", id).First(&category); result.Error != nil {
			return nil, fmt.Errorf("category not found")
		}
		categoryID = &id
	}

	product := Product{
		SellerID:    sellerID,
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      pq.StringArray(req.Images),
		Condition:   req.Condition,
		Status:      StatusActive,
		Location:    req.Location,
	}

	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Load relationships
	s.db.Preload("Category").First(&product, "id = ?", product.ID)

	return &product, nil
}

// UpdateProduct updates a listing; only its seller may do so
func (s *Service) UpdateProduct(sellerID, id uuid.UUID, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}

	if !product.IsOwnedBy(sellerID) {
		return nil, fmt.Errorf("you can only update your own listings")
	}

	if product.Status == StatusSold {
		return nil, fmt.Errorf("sold listings cannot be edited")
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id")
		}
		updates["category_id"] = categoryID
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(*req.Images)
	}
	if req.Condition != nil {
		if !ValidCondition(*req.Condition) {
			return nil, fmt.Errorf("invalid condition: %s", *req.Condition)
		}
		updates["condition"] = *req.Condition
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Status != nil {
		// Sellers may only pause or re-list; sold is owned by checkout
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
		updates["status"] = *req.Status
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Load updated product with relationships
	s.db.Preload("Category").First(&product, "id = ?", product.ID)

	return &product, nil
}

// DeleteProduct soft deletes a listing; only its seller may do so
func (s *Service) DeleteProduct(sellerID, id uuid.UUID) error {
	var product Product
	result := s.db.Where("id = ?", id).First(&product)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return fmt.Errorf("product not found")
		}
		return fmt.Errorf("failed to find product: %w", result.Error)
	}

	if !product.IsOwnedBy(sellerID) {
		return fmt.Errorf("you can only delete your own listings")
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// SetFeatured toggles the featured flag; staff only, enforced by the caller
func (s *Service) SetFeatured(id uuid.UUID, featured bool) error {
	result := s.db.Model(&Product{}).
		Where("id = ?", id).
		Update("is_featured", featured)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// buildOrderClause maps a sort key to an ORDER BY clause
func (s *Service) buildOrderClause(sortBy string) string {
	switch sortBy {
	case "oldest":
		return "created_at ASC"
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "popular":
		return "views_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}
