package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/models"
)

// PlatformFeePercent is the share of every transaction retained by the
// platform; the remainder is routed to the organizer's account.
const PlatformFeePercent = 5

// Metadata keys embedded in the checkout session. The webhook processor
// reconstructs the order from these alone; the client is never trusted to
// report what was purchased after the fact.
const (
	MetadataEventID   = "event_id"
	MetadataItems     = "items"
	MetadataBookingID = "booking_id"
)

// CheckoutLine is one line item of a payment-collection session, priced in
// minor currency units.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest is everything the payment processor needs to collect the
// money: line items, the platform's cut, the organizer's destination
// account, and the metadata that makes the webhook self-describing.
type CheckoutRequest struct {
	Lines              []CheckoutLine
	ApplicationFee     int64
	DestinationAccount string
	CustomerEmail      string
	Metadata           map[string]string
	SuccessURL         string
	CancelURL          string
}

// CheckoutSession is the processor's answer: where to send the customer and
// the opaque session handle to store on the booking.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentProvider is the outbound port to the external payment processor.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// MinorUnits converts a decimal price into integer minor currency units,
// rounding half-up once.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// StartCheckout hands the quoted order off to the payment processor. When a
// booking is supplied its id rides along in the metadata and the returned
// session id is stored on it; without one the metadata alone carries the
// full order, to be reconstructed at notification time.
//
// On a processor-side failure the pending booking is left untouched so a
// retry can reuse it.
func StartCheckout(ctx context.Context, db *gorm.DB, provider PaymentProvider, quote *Quote, booking *models.Booking, customerEmail string) (*CheckoutSession, error) {
	var organizer models.Organizer
	if err := db.First(&organizer, "id = ?", quote.Event.OrganizerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organizer %s", ErrPaymentAccountNotReady, quote.Event.OrganizerID)
		}
		return nil, err
	}
	if !organizer.CanReceivePayments() {
		return nil, fmt.Errorf("%w: organizer %s has no verified account", ErrPaymentAccountNotReady, organizer.ID)
	}

	req, err := buildCheckoutRequest(quote, booking, customerEmail)
	if err != nil {
		return nil, err
	}
	req.DestinationAccount = organizer.StripeAccountID

	session, err := provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentSessionFailed, err)
	}

	if booking != nil {
		err := db.Model(booking).Update("checkout_session_id", session.ID).Error
		if err != nil {
			return nil, err
		}
		booking.CheckoutSessionID = session.ID
	}

	return session, nil
}

func buildCheckoutRequest(quote *Quote, booking *models.Booking, customerEmail string) (CheckoutRequest, error) {
	lines := make([]CheckoutLine, 0, len(quote.Lines))
	requested := make([]RequestedLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, CheckoutLine{
			Name:       fmt.Sprintf("%s - %s", quote.Event.Title, line.TicketType.Name),
			UnitAmount: MinorUnits(line.UnitPrice),
			Quantity:   int64(line.Quantity),
		})
		requested = append(requested, RequestedLine{
			TicketTypeID: line.TicketType.ID,
			Quantity:     line.Quantity,
		})
	}

	itemsJSON, err := json.Marshal(requested)
	if err != nil {
		return CheckoutRequest{}, err
	}

	metadata := map[string]string{
		MetadataEventID: quote.Event.ID.String(),
		MetadataItems:   string(itemsJSON),
	}
	if booking != nil {
		metadata[MetadataBookingID] = booking.ID.String()
	}

	// The fee is rounded half-up once, on the order total, not per line.
	feeRate := decimal.NewFromInt(PlatformFeePercent).Div(decimal.NewFromInt(100))
	fee := MinorUnits(quote.Total.Mul(feeRate))

	return CheckoutRequest{
		Lines:          lines,
		ApplicationFee: fee,
		CustomerEmail:  customerEmail,
		Metadata:       metadata,
	}, nil
}

// ParseItemsMetadata decodes the items list a checkout session carried.
func ParseItemsMetadata(raw string) ([]RequestedLine, error) {
	var lines []RequestedLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("%w: bad items metadata: %v", ErrMalformedNotification, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty items metadata", ErrMalformedNotification)
	}
	return lines, nil
}

// ParseEventIDMetadata decodes the event id a checkout session carried.
func ParseEventIDMetadata(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad event id metadata: %v", ErrMalformedNotification, err)
	}
	return id, nil
}
