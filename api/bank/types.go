package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawBankRecord is one normalized statement line as produced by the
// parser. It is never persisted; the import either materializes it as
// a Kassenbuch entry or only reports it back to the caller.
type RawBankRecord struct {
	BookingDate  time.Time
	Counterparty string // payer/payee display name, "" if absent
	IBAN         string // normalized identifier, "" if absent or malformed
	Purpose      string
	Amount       decimal.Decimal // positive = credit, negative = debit
	Currency     string
}

// ParseResult is the outcome of parsing one uploaded statement file.
// Skipped counts non-blank data rows dropped because neither their
// date nor their amount could be understood; such rows never abort
// the batch.
type ParseResult struct {
	Records []RawBankRecord
	Skipped int
}
