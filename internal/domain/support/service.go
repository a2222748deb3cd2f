// internal/domain/support/service.go
package support

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

// Service handles support ticket business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new support service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateTicketRequest represents ticket creation data
type CreateTicketRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Message  string `json:"message" binding:"required"`
}

// AddMessageRequest represents a reply on a ticket
type AddMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// CreateTicket opens a new ticket with its first message
func (s *Service) CreateTicket(userID uuid.UUID, req *CreateTicketRequest) (*SupportTicket, error) {
	priority := req.Priority
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		priority = PriorityMedium
	}

	var ticket SupportTicket

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ticket = SupportTicket{
			UserID:   userID,
			Subject:  req.Subject,
			Category: req.Category,
			Priority: priority,
			Status:   StatusOpen,
		}

		if err := tx.Create(&ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		message := TicketMessage{
			TicketID: ticket.ID,
			SenderID: userID,
			Body:     req.Message,
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create ticket message: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"user_id":   userID,
	}).Info("Support ticket opened")

	return &ticket, nil
}

// GetUserTickets retrieves all tickets raised by a user
func (s *Service) GetUserTickets(userID uuid.UUID) ([]SupportTicket, error) {
	var tickets []SupportTicket
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tickets: %w", err)
	}
	return tickets, nil
}

// GetTicket retrieves a ticket with its thread.
// Staff may read any ticket, users only their own.
func (s *Service) GetTicket(userID uuid.UUID, isStaff bool, ticketID uuid.UUID) (*SupportTicket, error) {
	var ticket SupportTicket
	result := s.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", ticketID).
		First(&ticket)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to retrieve ticket: %w", result.Error)
	}

	if ticket.UserID != userID && !isStaff {
		return nil, ErrNotTicketOwner
	}

	return &ticket, nil
}

// AddMessage appends a reply to an open ticket.
// A staff reply moves an open ticket to in progress.
func (s *Service) AddMessage(userID uuid.UUID, isStaff bool, ticketID uuid.UUID, req *AddMessageRequest) (*TicketMessage, error) {
	ticket, err := s.GetTicket(userID, isStaff, ticketID)
	if err != nil {
		return nil, err
	}

	if !ticket.IsOpen() {
		return nil, ErrTicketClosed
	}

	message := TicketMessage{
		TicketID: ticketID,
		SenderID: userID,
		IsStaff:  isStaff,
		Body:     req.Body,
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to create ticket message: %w", err)
	}

	if isStaff && ticket.Status == StatusOpen {
		s.db.Model(ticket).Update("status", StatusInProgress)
	}

	return &message, nil
}

// UpdateTicketStatus sets a ticket's status; staff only, enforced by the caller
func (s *Service) UpdateTicketStatus(ticketID uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	result := s.db.Model(&SupportTicket{}).
		Where("id = ?", ticketID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// GetOpenTickets retrieves tickets awaiting staff attention
func (s *Service) GetOpenTickets() ([]SupportTicket, error) {
	var tickets []SupportTicket
	err := s.db.Where("status IN ?", []string{StatusOpen, StatusInProgress}).
		Order("created_at ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tickets: %w", err)
	}
	return tickets, nil
}
