package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/middleware"
	"github.com/gotix/gotix/internal/services"
)

type CheckoutSessionRequest struct {
	EventID       uuid.UUID                `json:"event_id" binding:"required"`
	Tickets       []services.RequestedLine `json:"tickets" binding:"required,min=1,dive"`
	CustomerEmail string                   `json:"customer_email" binding:"required,email"`
}

// CreateCheckoutSession is the bookingless handoff: no row is written up
// front, the session metadata alone describes the order, and the booking is
// materialized when the completion notification arrives.
func CreateCheckoutSession(c *gin.Context) {
	var checkoutReq CheckoutSessionRequest
	if err := c.ShouldBindJSON(&checkoutReq); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}

	provider := middleware.GetPaymentProvider(c)
	if provider == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment provider not configured.")
		return
	}

	quote, err := services.ValidateAvailability(db, checkoutReq.EventID, checkoutReq.Tickets)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session, err := services.StartCheckout(c.Request.Context(), db, provider, quote, nil, checkoutReq.CustomerEmail)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}
