package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organizer sells events through the platform and receives the ticket
// revenue on its connected payment account, minus the platform fee.
type Organizer struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name             string         `gorm:"not null" json:"name"`
	Email            string         `gorm:"unique;not null" json:"email"`
	StripeAccountID  string         `gorm:"uniqueIndex" json:"-"`
	ChargesEnabled   bool           `gorm:"default:false" json:"charges_enabled"`
	PayoutsEnabled   bool           `gorm:"default:false" json:"payouts_enabled"`
	DetailsSubmitted bool           `gorm:"default:false" json:"details_submitted"`
	Events           []Event        `gorm:"foreignKey:OrganizerID" json:"events,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (organizer *Organizer) BeforeCreate(tx *gorm.DB) (err error) {
	if organizer.ID == uuid.Nil {
		organizer.ID = uuid.New()
	}
	return
}

// CanReceivePayments reports whether the connected account is ready to
// take charges. Checkout sessions must not be created before this holds.
func (organizer *Organizer) CanReceivePayments() bool {
	return organizer.StripeAccountID != "" && organizer.ChargesEnabled
}
