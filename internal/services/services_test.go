package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gotix/gotix/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection would get its own in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Organizer{},
		&models.User{},
		&models.Event{},
		&models.TicketType{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Ticket{},
		&models.WebhookEvent{},
	))
	return db
}

func createOrganizer(t *testing.T, db *gorm.DB, ready bool) models.Organizer {
	t.Helper()
	organizer := models.Organizer{
		Name:  "Test Organizer",
		Email: "organizer@example.com",
	}
	if ready {
		organizer.StripeAccountID = "acct_test123"
		organizer.ChargesEnabled = true
		organizer.PayoutsEnabled = true
		organizer.DetailsSubmitted = true
	}
	require.NoError(t, db.Create(&organizer).Error)
	return organizer
}

func createEvent(t *testing.T, db *gorm.DB, organizerID uuid.UUID, status string, startTime time.Time) models.Event {
	t.Helper()
	event := models.Event{
		Title:       "Test Concert",
		Status:      status,
		StartTime:   startTime,
		EndTime:     startTime.Add(3 * time.Hour),
		Location:    "Test Hall",
		OrganizerID: organizerID,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func createTicketType(t *testing.T, db *gorm.DB, eventID uuid.UUID, price string, available, sold int) models.TicketType {
	t.Helper()
	ticketType := models.TicketType{
		EventID:           eventID,
		Name:              "General Admission",
		Price:             decimal.RequireFromString(price),
		QuantityAvailable: available,
		QuantitySold:      sold,
		IsActive:          true,
	}
	require.NoError(t, db.Create(&ticketType).Error)
	return ticketType
}

// bookableEvent seeds a published, future-dated event with a ready
// organizer and returns both.
func bookableEvent(t *testing.T, db *gorm.DB) (models.Event, models.Organizer) {
	t.Helper()
	organizer := createOrganizer(t, db, true)
	event := createEvent(t, db, organizer.ID, models.EventStatusPublished, time.Now().Add(24*time.Hour))
	return event, organizer
}
