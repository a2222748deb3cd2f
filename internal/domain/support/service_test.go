package support

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cubazar/marketplace-backend/internal/config"
)

func setupSupportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:support_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS support_tickets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  category TEXT,
  priority TEXT NOT NULL DEFAULT 'medium',
  status TEXT NOT NULL DEFAULT 'open',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS ticket_messages (
  id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  is_staff INTEGER NOT NULL DEFAULT 0,
  body TEXT NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return db
}

func newSupportService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupSupportTestDB(t)
	return NewService(db, &config.Config{}), db
}

func openTicket(t *testing.T, svc *Service, userID uuid.UUID) *SupportTicket {
	t.Helper()
	ticket, err := svc.CreateTicket(userID, &CreateTicketRequest{
		Subject:  "Order never arrived",
		Category: "orders",
		Priority: PriorityHigh,
		Message:  "I confirmed delivery with the seller but nothing showed up.",
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicket(t *testing.T) {
	t.Parallel()

	svc, db := newSupportService(t)
	userID := uuid.New()

	ticket := openTicket(t, svc, userID)

	assert.Equal(t, StatusOpen, ticket.Status)
	assert.Equal(t, PriorityHigh, ticket.Priority)

	// First message is written in the same transaction
	var messages []TicketMessage
	require.NoError(t, db.Where("ticket_id = ?", ticket.ID).Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, userID, messages[0].SenderID)
	assert.False(t, messages[0].IsStaff)
}

func TestCreateTicketDefaultsPriority(t *testing.T) {
	t.Parallel()

	svc, _ := newSupportService(t)

	ticket, err := svc.CreateTicket(uuid.New(), &CreateTicketRequest{
		Subject:  "Question about premium",
		Priority: "urgent",
		Message:  "Does premium renew automatically?",
	})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, ticket.Priority)
}

func TestGetTicketAccess(t *testing.T) {
	t.Parallel()

	svc, _ := newSupportService(t)
	owner := uuid.New()
	ticket := openTicket(t, svc, owner)

	got, err := svc.GetTicket(owner, false, ticket.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)

	_, err = svc.GetTicket(uuid.New(), false, ticket.ID)
	assert.ErrorIs(t, err, ErrNotTicketOwner)

	// Staff can read any ticket
	_, err = svc.GetTicket(uuid.New(), true, ticket.ID)
	assert.NoError(t, err)

	_, err = svc.GetTicket(owner, false, uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAddMessageStaffReply(t *testing.T) {
	t.Parallel()

	svc, db := newSupportService(t)
	owner := uuid.New()
	staff := uuid.New()
	ticket := openTicket(t, svc, owner)

	reply, err := svc.AddMessage(staff, true, ticket.ID, &AddMessageRequest{
		Body: "We are checking with the seller.",
	})
	require.NoError(t, err)
	assert.True(t, reply.IsStaff)

	// A staff reply moves an open ticket to in progress
	var stored SupportTicket
	require.NoError(t, db.First(&stored, "id = ?", ticket.ID).Error)
	assert.Equal(t, StatusInProgress, stored.Status)

	// The owner can keep replying without changing the status
	_, err = svc.AddMessage(owner, false, ticket.ID, &AddMessageRequest{Body: "Thanks, waiting."})
	require.NoError(t, err)
	require.NoError(t, db.First(&stored, "id = ?", ticket.ID).Error)
	assert.Equal(t, StatusInProgress, stored.Status)
}

func TestAddMessageClosedTicket(t *testing.T) {
	t.Parallel()

	svc, _ := newSupportService(t)
	owner := uuid.New()
	ticket := openTicket(t, svc, owner)

	require.NoError(t, svc.UpdateTicketStatus(ticket.ID, StatusClosed))

	_, err := svc.AddMessage(owner, false, ticket.ID, &AddMessageRequest{Body: "Hello?"})
	assert.ErrorIs(t, err, ErrTicketClosed)
}

func TestUpdateTicketStatus(t *testing.T) {
	t.Parallel()

	svc, db := newSupportService(t)
	ticket := openTicket(t, svc, uuid.New())

	require.NoError(t, svc.UpdateTicketStatus(ticket.ID, StatusResolved))

	var stored SupportTicket
	require.NoError(t, db.First(&stored, "id = ?", ticket.ID).Error)
	assert.Equal(t, StatusResolved, stored.Status)

	assert.ErrorIs(t, svc.UpdateTicketStatus(ticket.ID, "escalated"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateTicketStatus(uuid.New(), StatusClosed), ErrTicketNotFound)
}

func TestGetOpenTickets(t *testing.T) {
	t.Parallel()

	svc, _ := newSupportService(t)

	first := openTicket(t, svc, uuid.New())
	second := openTicket(t, svc, uuid.New())
	resolved := openTicket(t, svc, uuid.New())
	require.NoError(t, svc.UpdateTicketStatus(resolved.ID, StatusResolved))
	require.NoError(t, svc.UpdateTicketStatus(second.ID, StatusInProgress))

	queue, err := svc.GetOpenTickets()
	require.NoError(t, err)
	require.Len(t, queue, 2)

	ids := []uuid.UUID{queue[0].ID, queue[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
