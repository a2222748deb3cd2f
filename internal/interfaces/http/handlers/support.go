// internal/interfaces/http/handlers/support.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/domain/support"
	"github.com/cubazar/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupportHandler handles support ticket endpoints
type SupportHandler struct {
	supportService *support.Service
	config         *config.Config
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(db *gorm.DB, cfg *config.Config) *SupportHandler {
	return &SupportHandler{
		supportService: support.NewService(db, cfg),
		config:         cfg,
	}
}

// CreateTicket handles POST /support/tickets
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req support.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ticket, err := h.supportService.CreateTicket(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket created successfully",
		"data":    ticket,
	})
}

// GetMyTickets handles GET /support/tickets
func (h *SupportHandler) GetMyTickets(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	tickets, err := h.supportService.GetUserTickets(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve tickets",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tickets retrieved successfully",
		"data":    tickets,
	})
}

// GetTicket handles GET /support/tickets/:id
func (h *SupportHandler) GetTicket(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ticket ID",
		})
		return
	}

	isStaff := middleware.IsStaffFromContext(c)
	ticket, err := h.supportService.GetTicket(userID, isStaff, ticketID)
	if err != nil {
		c.JSON(supportErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket retrieved successfully",
		"data":    ticket,
	})
}

// AddMessage handles POST /support/tickets/:id/messages
func (h *SupportHandler) AddMessage(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ticket ID",
		})
		return
	}

	var req support.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	isStaff := middleware.IsStaffFromContext(c)
	message, err := h.supportService.AddMessage(userID, isStaff, ticketID, &req)
	if err != nil {
		c.JSON(supportErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reply added successfully",
		"data":    message,
	})
}

// StaffGetOpenTickets handles GET /admin/support/tickets
func (h *SupportHandler) StaffGetOpenTickets(c *gin.Context) {
	tickets, err := h.supportService.GetOpenTickets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve tickets",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Open tickets retrieved successfully",
		"data":    tickets,
	})
}

// StaffUpdateTicketStatus handles PUT /admin/support/tickets/:id/status
func (h *SupportHandler) StaffUpdateTicketStatus(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ticket ID",
		})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.supportService.UpdateTicketStatus(ticketID, req.Status); err != nil {
		c.JSON(supportErrorStatus(err), gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket status updated successfully",
	})
}

// supportErrorStatus maps support domain errors to HTTP status codes
func supportErrorStatus(err error) int {
	switch {
	case errors.Is(err, support.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, support.ErrNotTicketOwner):
		return http.StatusForbidden
	case errors.Is(err, support.ErrTicketClosed):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
