package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gotix/gotix/internal/helpers"
	"github.com/gotix/gotix/internal/services"
)

func getDB(c *gin.Context) (*gorm.DB, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.(*gorm.DB), true
}

// respondServiceError maps the pipeline's error taxonomy onto HTTP statuses
// with the standard error envelope.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEventNotBookable),
		errors.Is(err, services.ErrOrderLimitExceeded):
		helpers.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInsufficientInventory):
		helpers.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPaymentAccountNotReady):
		helpers.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrPaymentSessionFailed),
		errors.Is(err, services.ErrBookingCreationFailed):
		helpers.RespondWithError(c, http.StatusBadGateway, err.Error())
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}
