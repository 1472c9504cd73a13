package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gotix/gotix/internal/middleware"
	"github.com/gotix/gotix/internal/models"
	"github.com/gotix/gotix/internal/services"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

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

// stubProvider stands in for the payment processor.
type stubProvider struct {
	lastRequest *services.CheckoutRequest
	session     services.CheckoutSession
	err         error
}

func (p *stubProvider) CreateCheckoutSession(ctx context.Context, req services.CheckoutRequest) (*services.CheckoutSession, error) {
	p.lastRequest = &req
	if p.err != nil {
		return nil, p.err
	}
	return &p.session, nil
}

// newRouter wires the same middleware and routes the server does.
func newRouter(db *gorm.DB, provider services.PaymentProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PaymentsMiddleware(provider))

	public := r.Group("/v1")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/events/:id", GetEvent)
		public.POST("/bookings", CreateBooking)
		public.GET("/bookings/:id", GetBooking)
		public.POST("/checkout/sessions", CreateCheckoutSession)
		public.GET("/tickets/:code/qr", TicketQR)
	}
	r.POST("/v1/webhooks/payment", HandlePaymentWebhook)

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/tickets/scan", ScanTicket)
	}
	return r
}

func seedBookableEvent(t *testing.T, db *gorm.DB, price string, available int) (models.Event, models.TicketType) {
	t.Helper()
	organizer := models.Organizer{
		Name:            "Organizer",
		Email:           "org@example.com",
		StripeAccountID: "acct_test123",
		ChargesEnabled:  true,
	}
	require.NoError(t, db.Create(&organizer).Error)

	event := models.Event{
		Title:       "Test Concert",
		Status:      models.EventStatusPublished,
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(27 * time.Hour),
		OrganizerID: organizer.ID,
	}
	require.NoError(t, db.Create(&event).Error)

	ticketType := models.TicketType{
		EventID:           event.ID,
		Name:              "General Admission",
		Price:             decimal.RequireFromString(price),
		QuantityAvailable: available,
		IsActive:          true,
	}
	require.NoError(t, db.Create(&ticketType).Error)

	return event, ticketType
}

// signWebhookPayload produces the processor's signature header: an HMAC of
// "<timestamp>.<payload>" under the shared secret.
func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func itemsMetadata(t *testing.T, lines []services.RequestedLine) string {
	t.Helper()
	raw, err := json.Marshal(lines)
	require.NoError(t, err)
	return string(raw)
}
