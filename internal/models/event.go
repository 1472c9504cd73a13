package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

type Event struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Status      string         `gorm:"not null;default:'draft';index" json:"status"`
	StartTime   time.Time      `gorm:"not null" json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Location    string         `json:"location"`
	OrganizerID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizer_id"`
	Organizer   *Organizer     `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	TicketTypes []TicketType   `gorm:"foreignKey:EventID" json:"ticket_types,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// IsBookable reports whether new bookings may be taken against the event.
// Only published events that have not yet started qualify.
func (event *Event) IsBookable(now time.Time) bool {
	return event.Status == EventStatusPublished && event.StartTime.After(now)
}
