// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/product"
)

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
	Role   string      `form:"role"` // buyer, seller, or empty for both
}

// OrderDetail represents an order with its listing attached
type OrderDetail struct {
	Order
	Product *product.Product `json:"product,omitempty"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []OrderDetail `json:"orders"`
	Pagination Pagination    `json:"pagination"`
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

// GetUserOrders retrieves orders where the user is buyer, seller, or either
func (s *Service) GetUserOrders(userID uuid.UUID, req *OrderListRequest) (*OrderResponse, error) {
	var orders []Order
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{})

	switch req.Role {
	case "buyer":
		query = query.Where("buyer_id = ?", userID)
	case "seller":
		query = query.Where("seller_id = ?", userID)
	default:
		query = query.Where("buyer_id = ? OR seller_id = ?", userID, userID)
	}

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	details, err := s.attachProducts(orders)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	pagination := Pagination{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}

	return &OrderResponse{
		Orders:     details,
		Pagination: pagination,
	}, nil
}

// GetOrder retrieves a single order; only the buyer or the seller may see it
func (s *Service) GetOrder(userID, orderID uuid.UUID) (*OrderDetail, error) {
	var order Order
	result := s.db.Where("id = ?", orderID).First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	if !order.IsParty(userID) {
		return nil, ErrNotOrderParty
	}

	details, err := s.attachProducts([]Order{order})
	if err != nil {
		return nil, err
	}

	return &details[0], nil
}

// GetOrderHistory retrieves the status history for an order
func (s *Service) GetOrderHistory(userID, orderID uuid.UUID) ([]OrderStatusHistory, error) {
	if _, err := s.GetOrder(userID, orderID); err != nil {
		return nil, err
	}

	var history []OrderStatusHistory
	err := s.db.Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order history: %w", err)
	}
	return history, nil
}

// UpdateOrderStatus advances an order through its lifecycle.
// Only the seller of the order (or staff) may advance it.
func (s *Service) UpdateOrderStatus(actorID uuid.UUID, isStaff bool, orderID uuid.UUID, status OrderStatus, comment string) error {
	var order Order
	result := s.db.Where("id = ?", orderID).First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	if order.SellerID != actorID && !isStaff {
		return ErrNotOrderParty
	}

	if !isValidStatusTransition(order.Status, status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
	}

	// Cancellation restores the listing, so it goes through CancelOrder
	if status == OrderStatusCancelled {
		return fmt.Errorf("%w: use the cancel operation", ErrInvalidTransition)
	}

	updates := map[string]interface{}{
		"status": status,
	}

	now := time.Now().UTC()
	switch status {
	case OrderStatusConfirmed:
		updates["confirmed_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	statusHistory := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: actorID,
		CreatedAt: now,
	}

	if err := s.db.Create(&statusHistory).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}

	return nil
}

// CancelOrder cancels a pending order. Only the buyer may cancel, and
// cancellation puts the listing back on sale.
func (s *Service) CancelOrder(buyerID, orderID uuid.UUID, reason string) error {
	var order Order
	result := s.db.Where("id = ?", orderID).First(&order)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	if order.BuyerID != buyerID {
		return ErrNotBuyer
	}

	if !order.CanBeCancelled() {
		return ErrNotCancellable
	}

	now := time.Now().UTC()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Put the listing back on sale only if checkout marked it sold.
	// A listing re-listed or removed by the seller in the meantime is
	// left alone.
	err := tx.Model(&product.Product{}).
		Where("id = ? AND status = ?", order.ProductID, product.StatusSold).
		Update("status", product.StatusActive).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore listing: %w", err)
	}

	if err := tx.Model(&order).Updates(map[string]interface{}{
		"status":       OrderStatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update order status: %w", err)
	}

	statusHistory := OrderStatusHistory{
		OrderID:   orderID,
		Status:    OrderStatusCancelled,
		Comment:   fmt.Sprintf("Order cancelled: %s", reason),
		CreatedBy: buyerID,
		CreatedAt: now,
	}

	if err := tx.Create(&statusHistory).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create status history: %w", err)
	}

	return tx.Commit().Error
}

// Private helper methods

func (s *Service) attachProducts(orders []Order) ([]OrderDetail, error) {
	details := make([]OrderDetail, len(orders))
	for i, order := range orders {
		details[i] = OrderDetail{Order: order}

		var prod product.Product
		err := s.db.Unscoped().Preload("Category").
			Where("id = ?", order.ProductID).First(&prod).Error
		if err == nil {
			details[i].Product = &prod
		}
	}
	return details, nil
}

func isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending: {
			OrderStatusConfirmed,
			OrderStatusCancelled,
		},
		OrderStatusConfirmed: {
			OrderStatusShipped,
		},
		OrderStatusShipped: {
			OrderStatusDelivered,
		},
	}

	allowedStatuses, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, status := range allowedStatuses {
		if status == to {
			return true
		}
	}
	return false
}
