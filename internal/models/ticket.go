package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketStatusIssued    = "issued"
	TicketStatusScanned   = "scanned"
	TicketStatusCancelled = "cancelled"
)

// Ticket is one individually redeemable admission unit. Exactly one row per
// purchased unit, minted only after the booking is confirmed.
type Ticket struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BookingID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"booking_id"`
	Booking      *Booking       `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	TicketTypeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	TicketType   *TicketType    `gorm:"foreignKey:TicketTypeID" json:"ticket_type,omitempty"`
	TicketCode   string         `gorm:"unique;not null" json:"ticket_code"`
	QRCode       string         `gorm:"not null" json:"qr_code"`
	Status       string         `gorm:"not null;default:'issued';index" json:"status"`
	ScannedAt    *time.Time     `json:"scanned_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
