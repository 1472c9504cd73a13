package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/models"
)

// TicketQR renders the ticket's scannable payload as a PNG. The code itself
// is the bearer secret; whoever holds it can render the QR.
func TicketQR(c *gin.Context) {
	db, ok := getDB(c)
	if !ok {
		return
	}

	var ticket models.Ticket
	err := db.First(&ticket, "ticket_code = ?", c.Param("code")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if ticket.Status == models.TicketStatusCancelled {
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket has been cancelled.")
		return
	}

	qrImage, err := qrcode.Encode(ticket.QRCode, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ScanTicket marks an issued ticket as scanned at the gate. Only the
// organizer of the ticket's event may scan it, and a ticket can be scanned
// exactly once.
func ScanTicket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var scanRequest struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&scanRequest); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	db, ok := getDB(c)
	if !ok {
		return
	}

	var ticket models.Ticket
	err := db.Preload("Booking.Event").Preload("TicketType").
		First(&ticket, "ticket_code = ?", scanRequest.Code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if ticket.Booking == nil || ticket.Booking.Event == nil || ticket.Booking.Event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to scan this ticket.")
		return
	}

	switch ticket.Status {
	case models.TicketStatusScanned:
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket already scanned.")
		return
	case models.TicketStatusCancelled:
		helpers.RespondWithError(c, http.StatusForbidden, "Ticket has been cancelled.")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     models.TicketStatusScanned,
		"scanned_at": now,
	}
	if err := db.Model(&ticket).Updates(updates).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to scan ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket scanned successfully.",
		"ticket": gin.H{
			"code":        ticket.TicketCode,
			"event_title": ticket.Booking.Event.Title,
			"ticket_type": ticket.TicketType.Name,
			"scanned_at":  now,
		},
	})
}
