package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/models"
)

// GetEvent is the public event view backing the checkout page: the event
// with its ticket types and their point-in-time remaining counts.
func GetEvent(c *gin.Context) {
	db, ok := getDB(c)
	if !ok {
		return
	}

	var event models.Event
	err := db.Preload("TicketTypes").First(&event, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	now := time.Now()
	ticketTypes := make([]gin.H, 0, len(event.TicketTypes))
	for _, ticketType := range event.TicketTypes {
		ticketTypes = append(ticketTypes, gin.H{
			"id":            ticketType.ID,
			"name":          ticketType.Name,
			"price":         ticketType.Price,
			"remaining":     ticketType.Remaining(),
			"max_per_order": ticketType.MaxPerOrder,
			"on_sale":       ticketType.OnSale(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"event":        event,
		"ticket_types": ticketTypes,
		"bookable":     event.IsBookable(now),
	})
}
