package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// WishlistItemResponse represents a wishlist item with listing details
type WishlistItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	ProductID   uuid.UUID        `json:"product_id"`
	Product     *product.Product `json:"product,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
	IsAvailable bool             `json:"is_available"`
}

// WishlistResponse represents a user's wishlist
type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

// ToggleResult reports the outcome of a toggle
type ToggleResult struct {
	ProductID  uuid.UUID `json:"product_id"`
	Wishlisted bool      `json:"wishlisted"`
}

// ToggleWishlist adds the listing if absent and removes it if present.
// Exactly one write happens per call.
func (s *Service) ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	var existing WishlistItem
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		// Not wishlisted yet, validate and add
		var prod product.Product
		if err := s.db.Where("id = ?", productID).First(&prod).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("product not found")
			}
			return nil, fmt.Errorf("failed to find product: %w", err)
		}

		item := WishlistItem{
			UserID:    userID,
			ProductID: productID,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add to wishlist: %w", err)
		}

		s.cacheAdd(ctx, userID, productID)
		return &ToggleResult{ProductID: productID, Wishlisted: true}, nil
	} else if result.Error != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", result.Error)
	}

	// Already wishlisted, remove
	if err := s.db.Delete(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to remove from wishlist: %w", err)
	}

	s.cacheRemove(ctx, userID, productID)
	return &ToggleResult{ProductID: productID, Wishlisted: false}, nil
}

// IsWishlisted checks whether the user has saved the listing
func (s *Service) IsWishlisted(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ids, err := s.GetWishlistIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// GetWishlistIDs returns the product IDs the user has saved.
// Served from a redis set when available so browse pages can mark
// hearts without hitting the database.
func (s *Service) GetWishlistIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if s.redisClient != nil {
		members, err := s.redisClient.SMembers(ctx, s.cacheKey(userID)).Result()
		if err == nil && len(members) > 0 {
			ids := make([]uuid.UUID, 0, len(members))
			for _, member := range members {
				id, parseErr := uuid.Parse(member)
				if parseErr != nil {
					continue
				}
				ids = append(ids, id)
			}
			return ids, nil
		}
	}

	var items []WishlistItem
	if err := s.db.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	s.cacheFill(ctx, userID, ids)
	return ids, nil
}

// GetWishlist retrieves the user's saved listings with details
func (s *Service) GetWishlist(userID uuid.UUID) (*WishlistResponse, error) {
	var items []WishlistItem
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	responses := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		response := WishlistItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			AddedAt:   item.CreatedAt,
		}

		var prod product.Product
		if err := s.db.Preload("Category").Where("id = ?", item.ProductID).First(&prod).Error; err == nil {
			response.Product = &prod
			response.IsAvailable = prod.IsAvailable()
		}

		responses = append(responses, response)
	}

	return &WishlistResponse{
		Items: responses,
		Count: len(responses),
	}, nil
}

// ClearWishlist removes every saved listing for the user
func (s *Service) ClearWishlist(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&WishlistItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	if s.redisClient != nil {
		s.redisClient.Del(ctx, s.cacheKey(userID))
	}
	return nil
}

// Redis cache helpers. Cache misses and redis errors fall back to the
// database, so all of these are best effort.

func (s *Service) cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("wishlist:user:%s", userID)
}

func (s *Service) cacheAdd(ctx context.Context, userID, productID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.SAdd(ctx, s.cacheKey(userID), productID.String())
	s.redisClient.Expire(ctx, s.cacheKey(userID), 24*time.Hour)
}

func (s *Service) cacheRemove(ctx context.Context, userID, productID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.SRem(ctx, s.cacheKey(userID), productID.String())
}

func (s *Service) cacheFill(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) {
	if s.redisClient == nil || len(ids) == 0 {
		return
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id.String()
	}
	s.redisClient.SAdd(ctx, s.cacheKey(userID), members...)
	s.redisClient.Expire(ctx, s.cacheKey(userID), 24*time.Hour)
}
