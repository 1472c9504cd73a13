package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRefunded  = "refunded"
)

// Booking is one checkout attempt. It is created pending, confirmed only by
// the fulfillment path once the processor reports a captured payment, and
// cancelled on explicit cancel or payment failure.
type Booking struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User              *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EventID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	Event             *Event          `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Status            string          `gorm:"not null;default:'pending';index" json:"status"`
	TotalPrice        decimal.Decimal `gorm:"type:numeric;not null" json:"total_price"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `gorm:"index" json:"customer_email"`
	CustomerPhone     string          `json:"customer_phone"`
	CheckoutSessionID string          `gorm:"index" json:"checkout_session_id"`
	PaymentIntentID   string          `gorm:"index" json:"payment_intent_id"`
	Items             []BookingItem   `gorm:"foreignKey:BookingID" json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}
