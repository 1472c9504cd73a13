package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/models"
	"github.com/gotix/gotix/internal/services"
)

// notificationKind is the closed set of processor events this pipeline
// reacts to. Anything else falls into kindUnknown and is acknowledged
// without side effects, so the processor stops redelivering it.
type notificationKind int

const (
	kindUnknown notificationKind = iota
	kindSessionCompleted
	kindIntentSucceeded
	kindIntentFailed
	kindAccountUpdated
)

func kindOf(eventType string) notificationKind {
	switch eventType {
	case "checkout.session.completed":
		return kindSessionCompleted
	case "payment_intent.succeeded":
		return kindIntentSucceeded
	case "payment_intent.payment_failed":
		return kindIntentFailed
	case "account.updated":
		return kindAccountUpdated
	default:
		return kindUnknown
	}
}

// HandlePaymentWebhook is the trust boundary for payment-outcome
// notifications. The raw body is verified against the shared secret (with
// the processor's timestamp tolerance) before anything else happens;
// signature and parse failures are rejected with 400 so the processor's own
// retry policy applies. Each verified notification is claimed in the
// idempotency ledger before any side effect, so at-least-once delivery
// never double-issues tickets or double-increments inventory.
func HandlePaymentWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unable to read request body.")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logrus.WithError(err).Warn("rejected webhook with invalid signature")
		helpers.RespondWithError(c, http.StatusBadRequest, services.ErrInvalidSignature.Error())
		return
	}

	kind := kindOf(string(event.Type))
	if kind == kindUnknown {
		// Not ours; acknowledge so the processor does not retry forever.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	dispatch, err := parseNotification(kind, event)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, services.ErrMalformedNotification.Error())
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}

	claimed, err := services.ClaimWebhookEvent(db, event.ID, string(event.Type))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to record notification.")
		return
	}
	if !claimed {
		logrus.WithField("event_id", event.ID).Info("duplicate webhook delivery, ignoring")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	dispatch(db)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// parseNotification decodes the event payload up front, before the ledger
// claim, so a malformed notification can be rejected without consuming its
// id. The returned closure performs the side effects; fulfillment problems
// inside it are logged, never surfaced to the processor, because the
// payment has already been captured.
func parseNotification(kind notificationKind, event stripe.Event) (func(*gorm.DB), error) {
	switch kind {
	case kindSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, err
		}
		checkout, err := completedCheckoutFromSession(&session)
		if err != nil {
			return nil, err
		}
		return func(db *gorm.DB) {
			if err := services.FinalizeCheckout(db, *checkout); err != nil {
				logrus.WithError(err).WithField("session_id", session.ID).
					Error("fulfillment incomplete")
			}
		}, nil

	case kindIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, err
		}
		return func(db *gorm.DB) {
			recordPaymentIntent(db, &intent)
		}, nil

	case kindIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, err
		}
		bookingID := bookingIDFromMetadata(intent.Metadata)
		return func(db *gorm.DB) {
			if err := services.CancelBookingOnPaymentFailure(db, intent.ID, bookingID); err != nil {
				logrus.WithError(err).WithField("payment_intent_id", intent.ID).
					Warn("failed to cancel booking on payment failure")
			}
		}, nil

	case kindAccountUpdated:
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return nil, err
		}
		return func(db *gorm.DB) {
			err := services.SyncOrganizerAccount(db, account.ID,
				account.ChargesEnabled, account.PayoutsEnabled, account.DetailsSubmitted)
			if err != nil {
				logrus.WithError(err).WithField("account_id", account.ID).
					Warn("failed to sync organizer account")
			}
		}, nil
	}

	return nil, services.ErrMalformedNotification
}

// completedCheckoutFromSession rebuilds the order from the session's
// metadata, the sole source of truth for what was purchased.
func completedCheckoutFromSession(session *stripe.CheckoutSession) (*services.CompletedCheckout, error) {
	eventID, err := services.ParseEventIDMetadata(session.Metadata[services.MetadataEventID])
	if err != nil {
		return nil, err
	}
	items, err := services.ParseItemsMetadata(session.Metadata[services.MetadataItems])
	if err != nil {
		return nil, err
	}

	checkout := &services.CompletedCheckout{
		SessionID:   session.ID,
		AmountTotal: session.AmountTotal,
		EventID:     eventID,
		Items:       items,
		BookingID:   bookingIDFromMetadata(session.Metadata),
	}
	if session.PaymentIntent != nil {
		checkout.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil {
		checkout.Customer = services.CustomerInfo{
			Name:  session.CustomerDetails.Name,
			Email: session.CustomerDetails.Email,
			Phone: session.CustomerDetails.Phone,
		}
	}
	return checkout, nil
}

func bookingIDFromMetadata(metadata map[string]string) *uuid.UUID {
	raw := metadata[services.MetadataBookingID]
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// recordPaymentIntent stores the intent reference on a booking that does
// not have one yet. Confirmation and fulfillment stay with the
// session-completed path.
func recordPaymentIntent(db *gorm.DB, intent *stripe.PaymentIntent) {
	bookingID := bookingIDFromMetadata(intent.Metadata)
	if bookingID == nil {
		return
	}
	err := db.Model(&models.Booking{}).
		Where("id = ? AND payment_intent_id = ''", *bookingID).
		Update("payment_intent_id", intent.ID).Error
	if err != nil {
		logrus.WithError(err).WithField("booking_id", *bookingID).
			Warn("failed to record payment intent")
	}
}
