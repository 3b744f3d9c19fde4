package reminders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reminder is one outstanding fee notice for a member. Status moves
// pending -> sent -> paid; the overview sweep flips past-due open
// reminders to overdue.
type Reminder struct {
	ID        int64           `json:"id"`
	MemberID  int64           `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
	SentAt    *time.Time      `json:"sent_at"`
	Status    string          `json:"status"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}
