package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/models"
)

// CustomerInfo is the contact detail captured at checkout. A booking may
// additionally belong to a signed-in user, but contact info always travels
// with the booking itself so anonymous purchases stay reachable.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// CreateBooking persists a pending Booking and one BookingItem per quoted
// line as a single transaction. Either everything lands or nothing does; a
// failed line never leaves an orphaned booking behind.
func CreateBooking(db *gorm.DB, quote *Quote, customer CustomerInfo, userID *uuid.UUID) (*models.Booking, error) {
	booking := &models.Booking{
		UserID:        userID,
		EventID:       quote.Event.ID,
		Status:        models.BookingStatusPending,
		TotalPrice:    quote.Total,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		for _, line := range quote.Lines {
			item := models.BookingItem{
				BookingID:    booking.ID,
				TicketTypeID: line.TicketType.ID,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				TotalPrice:   line.TotalPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			booking.Items = append(booking.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookingCreationFailed, err)
	}

	return booking, nil
}

// CancelPendingBooking moves a pending booking to cancelled. Confirmed
// bookings are never demoted here; a refund is a different flow.
func CancelPendingBooking(db *gorm.DB, bookingID uuid.UUID) error {
	result := db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusPending).
		Update("status", models.BookingStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no pending booking %s", ErrNotFound, bookingID)
	}
	return nil
}

// FindBookingBySession loads a booking by the checkout session recorded on
// it at handoff time.
func FindBookingBySession(db *gorm.DB, sessionID string) (*models.Booking, error) {
	var booking models.Booking
	err := db.Preload("Items").First(&booking, "checkout_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking for session %s", ErrNotFound, sessionID)
		}
		return nil, err
	}
	return &booking, nil
}

// IncrementTicketSold applies the single-statement atomic increment that is
// the only allowed writer of quantity_sold. Read-then-write would lose
// updates under concurrent finalization.
func IncrementTicketSold(db *gorm.DB, ticketTypeID uuid.UUID, quantity int) error {
	result := db.Model(&models.TicketType{}).
		Where("id = ?", ticketTypeID).
		UpdateColumns(map[string]interface{}{
			"quantity_sold": gorm.Expr("quantity_sold + ?", quantity),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ticket type %s", ErrNotFound, ticketTypeID)
	}
	return nil
}
