package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/middleware"
	"github.com/gotix/gotix/internal/models"
	"github.com/gotix/gotix/internal/services"
)

type BookingRequest struct {
	EventID       uuid.UUID                `json:"event_id" binding:"required"`
	Items         []services.RequestedLine `json:"items" binding:"required,min=1,dive"`
	CustomerName  string                   `json:"customer_name" binding:"required"`
	CustomerEmail string                   `json:"customer_email" binding:"required,email"`
	CustomerPhone string                   `json:"customer_phone"`
}

// CreateBooking validates availability, writes a pending booking with its
// line items, and hands the order off to the payment processor. The
// customer finishes payment off-system; fulfillment happens when the
// webhook arrives.
func CreateBooking(c *gin.Context) {
	var bookingReq BookingRequest
	if err := c.ShouldBindJSON(&bookingReq); err != nil {
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

	quote, err := services.ValidateAvailability(db, bookingReq.EventID, bookingReq.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var userID *uuid.UUID
	if value, exists := c.Get("user_id"); exists {
		if id, isUUID := value.(uuid.UUID); isUUID {
			userID = &id
		}
	}

	customer := services.CustomerInfo{
		Name:  bookingReq.CustomerName,
		Email: bookingReq.CustomerEmail,
		Phone: bookingReq.CustomerPhone,
	}
	booking, err := services.CreateBooking(db, quote, customer, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session, err := services.StartCheckout(c.Request.Context(), db, provider, quote, booking, customer.Email)
	if err != nil {
		// The pending booking is kept on purpose; a retry can reuse it.
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":      booking,
		"checkout_url": session.URL,
	})
}

// GetBooking returns a booking with its items and any issued tickets.
func GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}

	var booking models.Booking
	err = db.Preload("Items.TicketType").First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving booking.")
		return
	}

	var tickets []models.Ticket
	if booking.Status == models.BookingStatusConfirmed {
		if err := db.Where("booking_id = ?", booking.ID).Find(&tickets).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"tickets": tickets,
	})
}
