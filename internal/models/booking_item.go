package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingItem is the per-ticket-type line within a Booking. UnitPrice is a
// snapshot taken at purchase time and never changes afterwards, even if the
// ticket type is repriced.
type BookingItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BookingID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	TicketTypeID uuid.UUID       `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	TicketType   *TicketType     `gorm:"foreignKey:TicketTypeID" json:"ticket_type,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric;not null" json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (item *BookingItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
