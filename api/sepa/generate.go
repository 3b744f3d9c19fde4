package sepa

import (
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
)

// ErrNoEligibleMembers means no member in the selection carries both an
// IBAN and a positive monthly fee.
var ErrNoEligibleMembers = errors.New(constants.ErrNoEligibleMembers)

// CreditorInfo is the association-side account data of a collection.
type CreditorInfo struct {
	Name string
	IBAN string
	BIC  string
	ID   string // SEPA Gläubiger-ID
}

// EligibleMembers filters the roster down to members a direct debit can
// be drawn from, preserving order.
func EligibleMembers(roster []members.Member) []members.Member {
	eligible := make([]members.Member, 0, len(roster))
	for _, m := range roster {
		if m.SepaEligible() {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

// SanitizeText keeps only the SEPA character set (plus German special
// letters), trims and caps at the schema's text length.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(constants.SepaAllowedChars, r) ||
			strings.ContainsRune(constants.SepaAllowedExtra, r) {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len([]rune(out)) > constants.SepaMaxTextLen {
		out = string([]rune(out)[:constants.SepaMaxTextLen])
	}
	return out
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// BuildDocument assembles the pain.008 tree for one collection run.
// Deterministic for a fixed now, which also makes it testable: the
// message id and creation stamp are the only time-derived values.
func BuildDocument(now time.Time, creditor CreditorInfo, eligible []members.Member, collectionDate time.Time) (*Document, error) {
	if len(eligible) == 0 {
		return nil, ErrNoEligibleMembers
	}

	msgID := "VK-" + now.UTC().Format("20060102150405")
	creditorName := SanitizeText(creditor.Name)
	if creditorName == "" {
		creditorName = "Verein"
	}

	total := decimal.Zero
	for _, m := range eligible {
		total = total.Add(*m.BeitragMonthly)
	}
	count := strconv.Itoa(len(eligible))

	doc := &Document{
		Xmlns: constants.SepaNamespace,
		Initn: Initiation{
			GroupHeader: GroupHeader{
				MsgID:          msgID,
				CreatedAt:      now.UTC().Format("2006-01-02T15:04:05"),
				NumberOfTxs:    count,
				ControlSum:     formatAmount(total),
				InitiatingName: creditorName,
			},
			PaymentInfo: PaymentInfo{
				PaymentInfoID: msgID + "-PMT",
				PaymentMethod: constants.SepaPaymentMethod,
				NumberOfTxs:   count,
				ControlSum:    formatAmount(total),
				PaymentTypeInfo: PaymentType{
					ServiceLevel:    constants.SepaServiceLevel,
					LocalInstrument: constants.SepaLocalInstrument,
					SequenceType:    constants.SepaSequenceType,
				},
				CollectionDate: collectionDate.Format(constants.DateFormat),
				CreditorName:   creditorName,
				CreditorIBAN:   strings.ReplaceAll(creditor.IBAN, " ", ""),
				CreditorBIC:    creditor.BIC,
				Transactions:   make([]Transaction, 0, len(eligible)),
			},
		},
	}

	period := collectionDate.Format("200601")
	for _, m := range eligible {
		signedAt := collectionDate
		if m.MemberSince != nil {
			signedAt = *m.MemberSince
		}
		memberNumber := ""
		if m.MemberNumber != nil {
			memberNumber = *m.MemberNumber
		}
		remittance := strings.TrimSpace(
			"Mitgliedsbeitrag " + collectionDate.Format("January 2006") + " " + memberNumber)

		doc.Initn.PaymentInfo.Transactions = append(doc.Initn.PaymentInfo.Transactions, Transaction{
			EndToEndID: "BEITRAG-" + strconv.FormatInt(m.ID, 10) + "-" + period,
			Amount: InstdAmt{
				Currency: constants.SepaCurrency,
				Value:    formatAmount(*m.BeitragMonthly),
			},
			DirectDebit: DirectDebitTx{
				MandateID:       "MANDAT-" + strconv.FormatInt(m.ID, 10),
				MandateSignedAt: signedAt.Format(constants.DateFormat),
				CreditorScheme: Scheme{
					ID:          creditor.ID,
					SchemeProps: constants.SepaServiceLevel,
				},
			},
			DebtorName:     SanitizeText(m.FullName()),
			DebtorIBAN:     strings.ReplaceAll(*m.IBAN, " ", ""),
			PurposeCode:    constants.SepaPurposeCode,
			RemittanceInfo: SanitizeText(remittance),
		})
	}
	return doc, nil
}

// Marshal renders the document with an XML declaration and two-space
// indentation, the shape bank upload portals expect.
func Marshal(doc *Document) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Filename names the export after the collection month.
func Filename(collectionDate time.Time) string {
	return "SEPA-Lastschrift-" + collectionDate.Format("2006-01") + ".xml"
}
