package models

import "time"

// WebhookEvent is the durable ledger of processor notifications that have
// already been handled. The processor delivers at least once; a row here
// turns any redelivery into a cheap no-op. The processor-issued event id is
// the primary key, so two concurrent deliveries race on the insert and only
// one wins.
type WebhookEvent struct {
	ID          string    `gorm:"primary_key" json:"id"`
	Type        string    `gorm:"not null" json:"type"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
}
