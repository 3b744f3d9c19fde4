package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one Kassenbuch row: an income or expense of the owning
// organization, optionally tied to a member and a category. Created by
// hand, by the bank import or by accepting a reconciled bank record;
// this subsystem never deletes entries on its own.
type Entry struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	MemberID        *int64          `json:"member_id"`
	CategoryID      *int64          `json:"category_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	ReceiptNumber   *string         `json:"receipt_number"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
