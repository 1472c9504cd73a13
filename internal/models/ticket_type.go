package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TicketType struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EventID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	Event             *Event          `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Name              string          `gorm:"not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	QuantityAvailable int             `gorm:"not null" json:"quantity_available"`
	QuantitySold      int             `gorm:"not null;default:0" json:"quantity_sold"`
	MaxPerOrder       *int            `json:"max_per_order,omitempty"`
	SaleStartsAt      *time.Time      `json:"sale_starts_at,omitempty"`
	SaleEndsAt        *time.Time      `json:"sale_ends_at,omitempty"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (ticketType *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if ticketType.ID == uuid.Nil {
		ticketType.ID = uuid.New()
	}
	return
}

// Remaining is the point-in-time unsold count. It is a snapshot, not a
// reservation; quantity_sold may move before a booking is finalized.
func (ticketType *TicketType) Remaining() int {
	return ticketType.QuantityAvailable - ticketType.QuantitySold
}

// OnSale reports whether the type can be purchased at the given instant.
func (ticketType *TicketType) OnSale(now time.Time) bool {
	if !ticketType.IsActive {
		return false
	}
	if ticketType.SaleStartsAt != nil && now.Before(*ticketType.SaleStartsAt) {
		return false
	}
	if ticketType.SaleEndsAt != nil && now.After(*ticketType.SaleEndsAt) {
		return false
	}
	return true
}
