package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotix/gotix/internal/models"
)

func TestGenerateTicketCodeFormatAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateTicketCode()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(code, "TKT-"), "code %q must carry the TKT prefix", code)
		parts := strings.Split(code, "-")
		require.Len(t, parts, 3)
		assert.Len(t, parts[1], 8, "date segment")
		assert.Len(t, parts[2], ticketCodeSuffixLen, "random segment")

		assert.False(t, seen[code], "generated a duplicate code %q", code)
		seen[code] = true
	}
}

func TestIssueTicketsMintsOneRowPerUnit(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)
	booking := pendingBooking(t, db, event.ID, ticketType.ID, 3)

	tickets, err := IssueTickets(db, booking.ID, ticketType.ID, 3)
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	codes := make(map[string]bool)
	for _, ticket := range tickets {
		assert.Equal(t, models.TicketStatusIssued, ticket.Status)
		assert.Equal(t, booking.ID, ticket.BookingID)
		assert.Equal(t, ticketType.ID, ticket.TicketTypeID)
		assert.Contains(t, ticket.QRCode, "/t/"+ticket.TicketCode)
		assert.False(t, codes[ticket.TicketCode])
		codes[ticket.TicketCode] = true
	}

	var count int64
	require.NoError(t, db.Model(&models.Ticket{}).Where("booking_id = ?", booking.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestTicketURLUsesConfiguredBase(t *testing.T) {
	t.Setenv("TICKET_BASE_URL", "https://tix.example.com")
	assert.Equal(t, "https://tix.example.com/t/TKT-X", TicketURL("TKT-X"))
}
