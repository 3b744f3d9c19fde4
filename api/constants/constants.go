package constants

// Content types
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
	HeaderContentType = "Content-Type"
)

// Date layouts. StatementDateLayouts is the ordered list the statement
// parser tries per cell; first successful parse wins.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormatISO  = "2006-01-02T15:04:05"
)

var StatementDateLayouts = []string{
	"02.01.2006", // German dot-separated, day first
	"2006-01-02", // ISO
	"02/01/2006", // slash, day first
	"01/02/2006", // slash, month first
}

// NBSP shows up in amount cells of several bank exports.
const NBSP = " "

// Statement column synonyms, evaluated in order against lowercased
// header cells (substring match, first keyword wins, first column
// wins). New bank formats are supported by appending keywords here.
var (
	HeaderKeywordsDate         = []string{"buchungstag", "buchungsdatum", "datum", "date", "valuta"}
	HeaderKeywordsValueDate    = []string{"wertstellung", "valutadatum"}
	HeaderKeywordsCounterparty = []string{"auftraggeber", "empfänger", "beguenstigter", "begünstigter", "name", "zahlungsempfänger"}
	HeaderKeywordsIBAN         = []string{"iban", "konto", "account"}
	HeaderKeywordsPurpose      = []string{"verwendungszweck", "buchungstext", "purpose", "betreff", "reference"}
	HeaderKeywordsAmount       = []string{"betrag", "amount", "umsatz"}
	HeaderKeywordsCurrency     = []string{"währung", "currency"}
	HeaderKeywordsDebit        = []string{"soll", "debit", "ausgabe", "belastung"}
	HeaderKeywordsCredit       = []string{"haben", "credit", "eingang", "gutschrift"}
)

// HeaderRowKeywords marks the first CSV line that is the header row;
// everything above it is bank preamble and is discarded.
var HeaderRowKeywords = []string{"buchungstag", "datum", "date", "buchung"}

// Delimiters probed against the header line, in order. Semicolon is
// the fallback when sniffing is inconclusive.
var StatementDelimiters = []rune{';', ',', '\t'}

// SEPA pain.008.003.02 wire format constants.
const (
	SepaNamespace       = "urn:iso:std:iso:20022:tech:xsd:pain.008.003.02"
	SepaPaymentMethod   = "DD"
	SepaServiceLevel    = "SEPA"
	SepaLocalInstrument = "CORE"
	SepaSequenceType    = "RCUR"
	SepaPurposeCode     = "MSVC"
	SepaCurrency        = "EUR"
	SepaMaxTextLen      = 140
)

// SepaAllowedChars is the character allow-list of the SEPA text fields;
// anything else is dropped, not escaped. German special letters are
// permitted by the DK subset.
const SepaAllowedChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 /-?:().,'+"
const SepaAllowedExtra = "äöüÄÖÜß"

// Ledger constraints
const (
	MaxDescriptionLen  = 500
	TxnTypeIncome      = "income"
	TxnTypeExpense     = "expense"
	DefaultDescription = "Bankeingang"
	DescriptionJoiner  = " – "
)

// Member status values
const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusSuspended = "suspended"
)

// Payment reminder status values
const (
	ReminderStatusPending = "pending"
	ReminderStatusSent    = "sent"
	ReminderStatusPaid    = "paid"
	ReminderStatusOverdue = "overdue"
)

// Match kinds reported by the reconciliation matcher.
const (
	MatchKindIBAN = "iban"
	MatchKindName = "name"
)
