package bank

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
	"VereinsKasse/api/transactions"
)

// MatchResult is the reconciliation outcome for one statement record.
type MatchResult struct {
	Record       RawBankRecord
	Member       *members.Member
	MatchKind    string // constants.MatchKindIBAN or constants.MatchKindName, "" when unmatched
	EntryCreated bool
}

// ReconcileOutcome is the aggregate result of reconciling one parsed
// statement against the member roster.
type ReconcileOutcome struct {
	Results       []MatchResult
	Entries       []PendingEntry
	MemberMatches int
	LedgerCreated int
}

// PendingEntry is a ledger row derived from an inflow, not yet
// persisted. The caller writes the whole batch in one transaction.
// MemberID is nil when the record matched no member.
type PendingEntry struct {
	MemberID    *int64
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// MatchMember resolves a statement record to a member. An exact IBAN
// match wins over everything and considers every member regardless of
// status; the name fallback only considers active members and needs a
// last name of at least three characters to avoid matching on noise.
func MatchMember(iban, counterparty, purpose string, roster []members.Member) (*members.Member, string) {
	if iban != "" {
		for i := range roster {
			m := &roster[i]
			if m.HasIBAN() && NormalizeIBAN(*m.IBAN) == iban {
				return m, constants.MatchKindIBAN
			}
		}
	}

	haystack := strings.ToLower(counterparty + " " + purpose)
	for i := range roster {
		m := &roster[i]
		if m.Status != constants.MemberStatusActive {
			continue
		}
		last := strings.ToLower(strings.TrimSpace(m.LastName))
		if len(last) < 3 {
			continue
		}
		full := strings.ToLower(strings.TrimSpace(m.FullName()))
		if strings.Contains(haystack, last) || strings.Contains(haystack, full) {
			return m, constants.MatchKindName
		}
	}
	return nil, ""
}

// BuildDescription joins the non-empty counterparty and purpose into a
// ledger description, capped at the column length.
func BuildDescription(counterparty, purpose string) string {
	var parts []string
	if counterparty != "" {
		parts = append(parts, counterparty)
	}
	if purpose != "" {
		parts = append(parts, purpose)
	}
	desc := strings.Join(parts, constants.DescriptionJoiner)
	if desc == "" {
		desc = constants.DefaultDescription
	}
	return transactions.Truncate(desc, constants.MaxDescriptionLen)
}

// ReconcileRecords matches every record against the roster and, when
// materialize is set, derives a pending ledger entry for every inflow,
// member-linked or not. Outflows are reported but never booked. Pure
// function: the caller owns persistence and its transaction boundary.
func ReconcileRecords(records []RawBankRecord, roster []members.Member, materialize bool) ReconcileOutcome {
	outcome := ReconcileOutcome{Results: make([]MatchResult, 0, len(records))}
	for _, rec := range records {
		member, kind := MatchMember(rec.IBAN, rec.Counterparty, rec.Purpose, roster)
		if member != nil {
			outcome.MemberMatches++
		}
		created := false
		if materialize && rec.Amount.IsPositive() {
			pending := PendingEntry{
				Amount:      rec.Amount,
				Description: BuildDescription(rec.Counterparty, rec.Purpose),
				Date:        rec.BookingDate,
			}
			if member != nil {
				id := member.ID
				pending.MemberID = &id
			}
			outcome.Entries = append(outcome.Entries, pending)
			outcome.LedgerCreated++
			created = true
		}
		outcome.Results = append(outcome.Results, MatchResult{
			Record:       rec,
			Member:       member,
			MatchKind:    kind,
			EntryCreated: created,
		})
	}
	return outcome
}
