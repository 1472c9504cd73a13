package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/models"
)

// RequestedLine is one (ticket type, quantity) pair as sent by the client.
type RequestedLine struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
}

// QuotedLine is a requested line after validation, with the price snapshot
// the booking will be built from.
type QuotedLine struct {
	TicketType models.TicketType
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Quote is the validated output of the availability check. It carries no
// reservation: remaining counts are a snapshot and may shrink before the
// booking is finalized.
type Quote struct {
	Event models.Event
	Lines []QuotedLine
	Total decimal.Decimal
}

// ValidateAvailability checks every requested line against the event's
// inventory and per-order caps and prices it. It has no side effects.
func ValidateAvailability(db *gorm.DB, eventID uuid.UUID, lines []RequestedLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no items requested", ErrNotFound)
	}

	var event models.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}

	now := time.Now()
	if !event.IsBookable(now) {
		return nil, fmt.Errorf("%w: event %s", ErrEventNotBookable, eventID)
	}

	quote := &Quote{Event: event, Total: decimal.Zero}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrOrderLimitExceeded)
		}

		var ticketType models.TicketType
		err := db.First(&ticketType, "id = ? AND event_id = ?", line.TicketTypeID, eventID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: ticket type %s", ErrNotFound, line.TicketTypeID)
			}
			return nil, err
		}

		// An inactive type or one outside its sale window is simply not
		// purchasable for this event.
		if !ticketType.OnSale(now) {
			return nil, fmt.Errorf("%w: ticket type %s is not on sale", ErrNotFound, line.TicketTypeID)
		}

		if line.Quantity > ticketType.Remaining() {
			return nil, fmt.Errorf("%w: ticket type %s has %d remaining, %d requested",
				ErrInsufficientInventory, line.TicketTypeID, ticketType.Remaining(), line.Quantity)
		}

		if ticketType.MaxPerOrder != nil && line.Quantity > *ticketType.MaxPerOrder {
			return nil, fmt.Errorf("%w: at most %d of ticket type %s per order",
				ErrOrderLimitExceeded, *ticketType.MaxPerOrder, line.TicketTypeID)
		}

		lineTotal := ticketType.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		quote.Lines = append(quote.Lines, QuotedLine{
			TicketType: ticketType,
			Quantity:   line.Quantity,
			UnitPrice:  ticketType.Price,
			TotalPrice: lineTotal,
		})
		quote.Total = quote.Total.Add(lineTotal)
	}

	return quote, nil
}
