package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gotix/gotix/internal/models"
)

// CompletedCheckout is the payload of a successful payment notification,
// already verified and parsed by the webhook processor.
type CompletedCheckout struct {
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	EventID         uuid.UUID
	BookingID       *uuid.UUID
	Items           []RequestedLine
	Customer        CustomerInfo
}

// ClaimWebhookEvent records a processor notification id in the durable
// ledger. It returns false when the id was already claimed, which is the
// signal to acknowledge the redelivery without side effects. The insert is
// first-writer-wins, so two concurrent deliveries of the same notification
// cannot both proceed.
func ClaimWebhookEvent(db *gorm.DB, eventID, eventType string) (bool, error) {
	record := models.WebhookEvent{ID: eventID, Type: eventType, ProcessedAt: time.Now()}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FinalizeCheckout turns a captured payment into a confirmed booking,
// inventory increments, and issued tickets.
//
// Two entry shapes converge here: with a booking reference the pending row
// is confirmed in place; without one the order is rebuilt purely from the
// session metadata and created already confirmed.
//
// Per-line failures after confirmation are logged and skipped rather than
// aborting: the money has already been captured, so declining the sale is
// not an option. The returned error is ErrPartialFulfillmentFailure in that
// case, for callers that want to alert; the webhook handler still
// acknowledges the notification.
func FinalizeCheckout(db *gorm.DB, checkout CompletedCheckout) error {
	booking, skipped, err := resolveBooking(db, checkout)
	if err != nil {
		return err
	}
	if booking == nil {
		// Already confirmed by an earlier delivery; nothing left to do.
		return nil
	}

	log := logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"session_id": checkout.SessionID,
	})

	failed := skipped
	for _, item := range booking.Items {
		if err := IncrementTicketSold(db, item.TicketTypeID, item.Quantity); err != nil {
			log.WithError(err).WithField("ticket_type_id", item.TicketTypeID).
				Warn("failed to increment sold count, skipping line")
			failed++
			continue
		}
		if _, err := IssueTickets(db, booking.ID, item.TicketTypeID, item.Quantity); err != nil {
			log.WithError(err).WithField("ticket_type_id", item.TicketTypeID).
				Warn("failed to issue tickets for line")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d lines failed for booking %s",
			ErrPartialFulfillmentFailure, failed, len(booking.Items)+skipped, booking.ID)
	}

	log.Info("booking fulfilled")
	return nil
}

// resolveBooking returns the confirmed booking whose lines still need
// fulfillment plus the count of metadata lines that could not be resolved,
// or a nil booking when the notification is a no-op for an already
// confirmed booking.
func resolveBooking(db *gorm.DB, checkout CompletedCheckout) (*models.Booking, int, error) {
	if checkout.BookingID != nil {
		var booking models.Booking
		err := db.Preload("Items").First(&booking, "id = ?", *checkout.BookingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: booking %s", ErrNotFound, *checkout.BookingID)
			}
			return nil, 0, err
		}

		if booking.Status == models.BookingStatusConfirmed {
			logrus.WithField("booking_id", booking.ID).
				Info("duplicate success notification for confirmed booking, ignoring")
			return nil, 0, nil
		}

		updates := map[string]interface{}{
			"status":            models.BookingStatusConfirmed,
			"payment_intent_id": checkout.PaymentIntentID,
		}
		if booking.CheckoutSessionID == "" {
			updates["checkout_session_id"] = checkout.SessionID
		}
		if err := db.Model(&booking).Updates(updates).Error; err != nil {
			return nil, 0, err
		}
		booking.Status = models.BookingStatusConfirmed
		booking.PaymentIntentID = checkout.PaymentIntentID
		return &booking, 0, nil
	}

	return createBookingFromMetadata(db, checkout)
}

// createBookingFromMetadata is the metadata-driven entry shape: no booking
// row existed at notification time, so one is materialized, already
// confirmed, from what the session itself carried. A line whose ticket type
// cannot be resolved is logged and skipped, never allowed to sink the whole
// booking: the money is already captured, so the resolvable lines must
// still be confirmed and ticketed.
func createBookingFromMetadata(db *gorm.DB, checkout CompletedCheckout) (*models.Booking, int, error) {
	items := make([]models.BookingItem, 0, len(checkout.Items))
	skipped := 0
	for _, line := range checkout.Items {
		var ticketType models.TicketType
		err := db.First(&ticketType, "id = ? AND event_id = ?", line.TicketTypeID, checkout.EventID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithFields(logrus.Fields{
					"ticket_type_id": line.TicketTypeID,
					"session_id":     checkout.SessionID,
				}).Warn("session metadata references unknown ticket type, skipping line")
				skipped++
				continue
			}
			return nil, 0, err
		}
		items = append(items, models.BookingItem{
			TicketTypeID: ticketType.ID,
			Quantity:     line.Quantity,
			UnitPrice:    ticketType.Price,
			TotalPrice:   ticketType.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	booking := &models.Booking{
		EventID:           checkout.EventID,
		Status:            models.BookingStatusConfirmed,
		TotalPrice:        decimal.New(checkout.AmountTotal, -2),
		CustomerName:      checkout.Customer.Name,
		CustomerEmail:     checkout.Customer.Email,
		CustomerPhone:     checkout.Customer.Phone,
		CheckoutSessionID: checkout.SessionID,
		PaymentIntentID:   checkout.PaymentIntentID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].BookingID = booking.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBookingCreationFailed, err)
	}
	booking.Items = items

	return booking, skipped, nil
}

// CancelBookingOnPaymentFailure handles a failed-payment notification. The
// booking is located through the intent's mirrored metadata; a pending row
// moves to cancelled, anything else is left alone.
func CancelBookingOnPaymentFailure(db *gorm.DB, paymentIntentID string, bookingID *uuid.UUID) error {
	query := db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending)
	switch {
	case bookingID != nil:
		query = query.Where("id = ?", *bookingID)
	case paymentIntentID != "":
		query = query.Where("payment_intent_id = ?", paymentIntentID)
	default:
		return fmt.Errorf("%w: failure notification without booking reference", ErrMalformedNotification)
	}

	result := query.Update("status", models.BookingStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logrus.WithFields(logrus.Fields{
			"payment_intent_id": paymentIntentID,
		}).Info("payment failure notification matched no pending booking")
	}
	return nil
}

// SyncOrganizerAccount copies the processor's account verification flags
// onto the organizer row linked to that account.
func SyncOrganizerAccount(db *gorm.DB, accountID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) error {
	result := db.Model(&models.Organizer{}).
		Where("stripe_account_id = ?", accountID).
		UpdateColumns(map[string]interface{}{
			"charges_enabled":   chargesEnabled,
			"payouts_enabled":   payoutsEnabled,
			"details_submitted": detailsSubmitted,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		logrus.WithField("account_id", accountID).
			Info("account update for unknown organizer, ignoring")
	}
	return nil
}
