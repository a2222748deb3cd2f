// internal/domain/support/entity.go
package support

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket status values
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Support errors surfaced to handlers
var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNotTicketOwner = errors.New("you can only view your own tickets")
	ErrTicketClosed   = errors.New("this ticket is closed")
	ErrInvalidStatus  = errors.New("invalid ticket status")
)

// SupportTicket represents a help request raised by a user
type SupportTicket struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Subject   string    `gorm:"not null;size:255" json:"subject"`
	Category  string    `gorm:"size:50" json:"category"` // account, orders, payments, listings, other
	Priority  string    `gorm:"size:20;default:'medium'" json:"priority"`
	Status    string    `gorm:"size:20;default:'open';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Messages []TicketMessage `gorm:"foreignKey:TicketID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"messages,omitempty"`
}

// TicketMessage represents one message in a ticket thread
type TicketMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (SupportTicket) TableName() string { return "support_tickets" }
func (TicketMessage) TableName() string { return "ticket_messages" }

// BeforeCreate assigns a UUID primary key
func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (m *TicketMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the ticket still accepts messages
func (t *SupportTicket) IsOpen() bool {
	return t.Status == StatusOpen || t.Status == StatusInProgress
}

// ValidStatus reports whether the status value is one we accept
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}
