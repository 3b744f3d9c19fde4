package sepa

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func eligibleMember(id int64, first, last, iban, fee string) members.Member {
	return members.Member{
		ID:             id,
		FirstName:      first,
		LastName:       last,
		Status:         constants.MemberStatusActive,
		IBAN:           strPtr(iban),
		BeitragMonthly: decPtr(fee),
	}
}

var testCreditor = CreditorInfo{
	Name: "Musterverein e.V.",
	IBAN: "DE02 1203 0000 0000 2020 51",
	BIC:  "BYLADEM1001",
	ID:   "DE98ZZZ09999999999",
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func TestBuildDocumentControlSum(t *testing.T) {
	roster := []members.Member{
		eligibleMember(7, "Max", "Mustermann", "DE89370400440532013000", "10.50"),
		eligibleMember(8, "Erika", "Musterfrau", "AT611904300234573201", "15.00"),
	}
	collection := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	doc, err := BuildDocument(fixedNow(), testCreditor, roster, collection)
	require.NoError(t, err)

	hdr := doc.Initn.GroupHeader
	assert.Equal(t, "VK-20260301093000", hdr.MsgID)
	assert.Equal(t, "2", hdr.NumberOfTxs)
	assert.Equal(t, "25.50", hdr.ControlSum)
	assert.Equal(t, "Musterverein e.V.", hdr.InitiatingName)

	pmt := doc.Initn.PaymentInfo
	assert.Equal(t, "VK-20260301093000-PMT", pmt.PaymentInfoID)
	assert.Equal(t, "25.50", pmt.ControlSum)
	assert.Equal(t, "DE02120300000000202051", pmt.CreditorIBAN)
	assert.Equal(t, "2026-03-15", pmt.CollectionDate)

	require.Len(t, pmt.Transactions, 2)
	tx := pmt.Transactions[0]
	assert.Equal(t, "BEITRAG-7-202603", tx.EndToEndID)
	assert.Equal(t, "10.50", tx.Amount.Value)
	assert.Equal(t, "EUR", tx.Amount.Currency)
	assert.Equal(t, "MANDAT-7", tx.DirectDebit.MandateID)
	// no member_since stored, so the collection date doubles as the
	// mandate signature date
	assert.Equal(t, "2026-03-15", tx.DirectDebit.MandateSignedAt)
	assert.Equal(t, "MSVC", tx.PurposeCode)
	assert.Equal(t, "Mitgliedsbeitrag March 2026", tx.RemittanceInfo)
}

func TestBuildDocumentUsesMemberSinceAsSignatureDate(t *testing.T) {
	since := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	m := eligibleMember(7, "Max", "Mustermann", "DE89370400440532013000", "10.50")
	m.MemberSince = &since
	m.MemberNumber = strPtr("M-0007")

	collection := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	doc, err := BuildDocument(fixedNow(), testCreditor, []members.Member{m}, collection)
	require.NoError(t, err)

	tx := doc.Initn.PaymentInfo.Transactions[0]
	assert.Equal(t, "2020-05-01", tx.DirectDebit.MandateSignedAt)
	assert.Equal(t, "Mitgliedsbeitrag March 2026 M-0007", tx.RemittanceInfo)
}

func TestBuildDocumentNoEligibleMembers(t *testing.T) {
	_, err := BuildDocument(fixedNow(), testCreditor, nil, time.Now())
	assert.ErrorIs(t, err, ErrNoEligibleMembers)
}

func TestMarshalDeterministic(t *testing.T) {
	roster := []members.Member{
		eligibleMember(7, "Max", "Mustermann", "DE89370400440532013000", "10.50"),
	}
	collection := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	doc1, err := BuildDocument(fixedNow(), testCreditor, roster, collection)
	require.NoError(t, err)
	doc2, err := BuildDocument(fixedNow(), testCreditor, roster, collection)
	require.NoError(t, err)

	xml1, err := Marshal(doc1)
	require.NoError(t, err)
	xml2, err := Marshal(doc2)
	require.NoError(t, err)
	assert.Equal(t, xml1, xml2)

	out := string(xml1)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 1, strings.Count(out, constants.SepaNamespace))
	assert.Contains(t, out, "<CstmrDrctDbtInitn>")
	assert.Contains(t, out, `<InstdAmt Ccy="EUR">10.50</InstdAmt>`)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Müller  Söhne", SanitizeText("Müller & Söhne"))
	assert.Equal(t, "Max Mustermann", SanitizeText("  Max Mustermann  "))
	assert.Equal(t, "Beitrag 2026/03", SanitizeText("Beitrag 2026/03"))
	assert.Equal(t, "", SanitizeText("@#%^*"))

	long := strings.Repeat("a", 200)
	assert.Len(t, SanitizeText(long), 140)
}

func TestEligibleMembers(t *testing.T) {
	noIBAN := eligibleMember(1, "A", "Alpha", "", "10.00")
	noIBAN.IBAN = nil
	zeroFee := eligibleMember(2, "B", "Beta", "DE89370400440532013000", "0")
	ok := eligibleMember(3, "C", "Gamma", "DE89370400440532013000", "12.00")

	got := EligibleMembers([]members.Member{noIBAN, zeroFee, ok})
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "SEPA-Lastschrift-2026-03.xml",
		Filename(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}
