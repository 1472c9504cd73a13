package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gotix/gotix/internal/models"
)

const (
	ticketCodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ticketCodeSuffixLen  = 12
	ticketCodeMaxRetries = 3
)

// GenerateTicketCode produces a collision-resistant code: a date prefix for
// operator legibility plus a random suffix drawn from an unambiguous
// alphabet (no 0/O, 1/I). 32^12 suffixes make guessing infeasible; the
// unique column is the actual safety net.
func GenerateTicketCode() (string, error) {
	suffix := make([]byte, ticketCodeSuffixLen)
	alphabetLen := big.NewInt(int64(len(ticketCodeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		suffix[i] = ticketCodeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TKT-%s-%s", time.Now().UTC().Format("20060102"), string(suffix)), nil
}

// TicketURL derives the scannable payload encoded into the QR image.
func TicketURL(code string) string {
	base := os.Getenv("TICKET_BASE_URL")
	if base == "" {
		base = "https://tickets.gotix.local"
	}
	return fmt.Sprintf("%s/t/%s", base, code)
}

// IssueTickets mints one Ticket row per purchased unit. Codes are
// regenerated on a unique-constraint conflict rather than pre-checked; the
// store enforces uniqueness, the issuer just retries.
func IssueTickets(db *gorm.DB, bookingID, ticketTypeID uuid.UUID, count int) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, count)
	for unit := 0; unit < count; unit++ {
		ticket, err := issueOne(db, bookingID, ticketTypeID)
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, nil
}

func issueOne(db *gorm.DB, bookingID, ticketTypeID uuid.UUID) (*models.Ticket, error) {
	for attempt := 0; attempt < ticketCodeMaxRetries; attempt++ {
		code, err := GenerateTicketCode()
		if err != nil {
			return nil, err
		}

		ticket := models.Ticket{
			BookingID:    bookingID,
			TicketTypeID: ticketTypeID,
			TicketCode:   code,
			QRCode:       TicketURL(code),
			Status:       models.TicketStatusIssued,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_code"}},
			DoNothing: true,
		}).Create(&ticket)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			return &ticket, nil
		}
		// Code collision: another ticket already owns it. Regenerate.
	}
	return nil, fmt.Errorf("ticket code generation kept colliding for booking %s", bookingID)
}
