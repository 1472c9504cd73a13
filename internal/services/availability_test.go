package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotix/gotix/internal/models"
)

func TestValidateAvailabilityQuotesRequestedLines(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)

	quote, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 2, quote.Lines[0].Quantity)
	assert.True(t, quote.Lines[0].UnitPrice.Equal(ticketType.Price))
	assert.Equal(t, "50", quote.Lines[0].TotalPrice.String())
	assert.Equal(t, "50", quote.Total.String())
	assert.Equal(t, event.ID, quote.Event.ID)
}

func TestValidateAvailabilityRejectsDraftEvent(t *testing.T) {
	db := openTestDB(t)
	organizer := createOrganizer(t, db, true)
	event := createEvent(t, db, organizer.ID, models.EventStatusDraft, time.Now().Add(24*time.Hour))
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrEventNotBookable)
}

func TestValidateAvailabilityRejectsPastEvent(t *testing.T) {
	db := openTestDB(t)
	organizer := createOrganizer(t, db, true)
	event := createEvent(t, db, organizer.ID, models.EventStatusPublished, time.Now().Add(-time.Hour))
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrEventNotBookable)
}

func TestValidateAvailabilityRejectsSoldOut(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 5, 5)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestValidateAvailabilityRejectsUnknownTicketType(t *testing.T) {
	db := openTestDB(t)
	event, organizer := bookableEvent(t, db)

	// A ticket type that belongs to a different event must not validate.
	otherEvent := createEvent(t, db, organizer.ID, models.EventStatusPublished, time.Now().Add(24*time.Hour))
	foreignType := createTicketType(t, db, otherEvent.ID, "10.00", 50, 0)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: foreignType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: uuid.New(), Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateAvailabilityRejectsInactiveTicketType(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)
	require.NoError(t, db.Model(&ticketType).Update("is_active", false).Error)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateAvailabilityOrderLimitBoundary(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)
	maxPerOrder := 4
	require.NoError(t, db.Model(&ticketType).Update("max_per_order", maxPerOrder).Error)

	// Exactly the cap succeeds.
	quote, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: maxPerOrder},
	})
	require.NoError(t, err)
	assert.Equal(t, maxPerOrder, quote.Lines[0].Quantity)

	// One over the cap fails.
	_, err = ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: maxPerOrder + 1},
	})
	assert.ErrorIs(t, err, ErrOrderLimitExceeded)
}

func TestValidateAvailabilityRespectsSaleWindow(t *testing.T) {
	db := openTestDB(t)
	event, _ := bookableEvent(t, db)
	ticketType := createTicketType(t, db, event.ID, "25.00", 100, 0)

	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, db.Model(&ticketType).Update("sale_starts_at", future).Error)

	_, err := ValidateAvailability(db, event.ID, []RequestedLine{
		{TicketTypeID: ticketType.ID, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
