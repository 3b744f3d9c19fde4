package members

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is one association member, owned by exactly one organization
// account (UserID). IBAN and BeitragMonthly drive reconciliation
// matching and SEPA eligibility.
type Member struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	MemberSince    *time.Time       `json:"member_since"`
	MemberNumber   *string          `json:"member_number"`
	Status         string           `json:"status"`
	BeitragMonthly *decimal.Decimal `json:"beitrag_monthly"`
	IBAN           *string          `json:"iban"`
	Notes          *string          `json:"notes"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// HasIBAN reports whether a non-empty account identifier is stored.
func (m *Member) HasIBAN() bool {
	return m.IBAN != nil && *m.IBAN != ""
}

// HasBeitrag reports whether a positive monthly fee is stored.
func (m *Member) HasBeitrag() bool {
	return m.BeitragMonthly != nil && m.BeitragMonthly.IsPositive()
}

// SepaEligible: direct-debit collection needs both an account
// identifier and a positive fee.
func (m *Member) SepaEligible() bool {
	return m.HasIBAN() && m.HasBeitrag()
}

// MaskedIBAN hides everything but the trailing four characters.
func (m *Member) MaskedIBAN() string {
	if !m.HasIBAN() {
		return ""
	}
	iban := *m.IBAN
	if len(iban) <= 4 {
		return "****" + iban
	}
	return "****" + iban[len(iban)-4:]
}
