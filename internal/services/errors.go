package services

import "errors"

var (
	ErrNotFound                  = errors.New("resource not found")
	ErrEventNotBookable          = errors.New("event is not open for booking")
	ErrInsufficientInventory     = errors.New("not enough tickets remaining")
	ErrOrderLimitExceeded        = errors.New("quantity exceeds the per-order limit")
	ErrBookingCreationFailed     = errors.New("failed to create booking")
	ErrPaymentAccountNotReady    = errors.New("organizer payment account is not ready")
	ErrPaymentSessionFailed      = errors.New("failed to create payment session")
	ErrInvalidSignature          = errors.New("invalid webhook signature")
	ErrMalformedNotification     = errors.New("malformed webhook notification")
	ErrPartialFulfillmentFailure = errors.New("some lines could not be fulfilled")
)
