package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementSemicolon(t *testing.T) {
	csv := "Buchungstag;Auftraggeber;IBAN;Verwendungszweck;Betrag\n" +
		"01.03.2026;Max Mustermann;DE89 3704 0044 0532 0130 00;Mitgliedsbeitrag Maerz;45,50\n" +
		"02.03.2026;Stadtwerke;;Abschlag Strom;-120,00\n"

	result, err := ParseStatement([]byte(csv))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 0, result.Skipped)

	first := result.Records[0]
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), first.BookingDate)
	assert.Equal(t, "Max Mustermann", first.Counterparty)
	assert.Equal(t, "DE89370400440532013000", first.IBAN)
	assert.Equal(t, "Mitgliedsbeitrag Maerz", first.Purpose)
	assert.Equal(t, "45.5", first.Amount.String())
	assert.Equal(t, "EUR", first.Currency)

	assert.Equal(t, "-120", result.Records[1].Amount.String())
	assert.Equal(t, "", result.Records[1].IBAN)
}

func TestParseStatementDateFormats(t *testing.T) {
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, date := range []string{"05.03.2026", "2026-03-05", "05/03/2026"} {
		csv := "Buchungstag;Name;Betrag\n" + date + ";Jemand;10,00\n"
		result, err := ParseStatement([]byte(csv))
		require.NoError(t, err)
		require.Len(t, result.Records, 1, "date %q", date)
		assert.Equal(t, want, result.Records[0].BookingDate, "date %q", date)
	}
}

func TestParseStatementDiscardsPreamble(t *testing.T) {
	csv := "Umsatzanzeige Konto 1234567\n" +
		"Zeitraum: 01.03.2026 bis 31.03.2026\n" +
		"\n" +
		"Buchungstag;Auftraggeber;Betrag\n" +
		"01.03.2026;Max Mustermann;45,50\n"

	result, err := ParseStatement([]byte(csv))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Max Mustermann", result.Records[0].Counterparty)
}

func TestParseStatementSniffsCommaAndTab(t *testing.T) {
	commaCSV := "Buchungstag,Name,Betrag\n01.03.2026,Erika Musterfrau,33.00\n"
	result, err := ParseStatement([]byte(commaCSV))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Erika Musterfrau", result.Records[0].Counterparty)
	assert.Equal(t, "33", result.Records[0].Amount.String())

	tabCSV := "Buchungstag\tName\tBetrag\n01.03.2026\tErika Musterfrau\t33,00\n"
	result, err = ParseStatement([]byte(tabCSV))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "33", result.Records[0].Amount.String())
}

func TestParseStatementCountsSkippedRows(t *testing.T) {
	csv := "Buchungstag;Name;Betrag\n" +
		"01.03.2026;Max Mustermann;45,50\n" +
		"kein Datum;Kaputte Zeile;45,50\n" +
		"02.03.2026;Stadtwerke;nicht numerisch\n" +
		"\n" +
		"03.03.2026;Erika Musterfrau;10,00\n"

	result, err := ParseStatement([]byte(csv))
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.Skipped)
}

func TestParseStatementLatin1(t *testing.T) {
	// "Müller" with 0xFC is invalid UTF-8 and must fall through to the
	// ISO 8859-1 decoder.
	raw := []byte("Buchungstag;Name;Betrag\n01.03.2026;M\xfcller;45,50\n")
	result, err := ParseStatement(raw)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Müller", result.Records[0].Counterparty)
}

func TestParseStatementUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Buchungstag;Name;Betrag\n01.03.2026;Müller;45,50\n")...)
	result, err := ParseStatement(raw)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Müller", result.Records[0].Counterparty)
}

func TestParseStatementDebitCreditColumns(t *testing.T) {
	csv := "Buchungstag;Name;Soll;Haben\n" +
		"01.03.2026;Max Mustermann;;50,00\n" +
		"02.03.2026;Stadtwerke;20,00;\n"

	result, err := ParseStatement([]byte(csv))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "50", result.Records[0].Amount.String())
	assert.Equal(t, "-20", result.Records[1].Amount.String())
}

func TestNormalizeIBAN(t *testing.T) {
	assert.Equal(t, "DE89370400440532013000", NormalizeIBAN("  de89 3704 0044 0532 0130 00 "))
	assert.Equal(t, "", NormalizeIBAN("Max Mustermann"))
	assert.Equal(t, "", NormalizeIBAN(""))
	assert.Equal(t, "AT611904300234573201", NormalizeIBAN("AT61\t1904 3002 3457 3201"))
}
