package bank

import (
	"bytes"
	"encoding/csv"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"VereinsKasse/api/constants"
)

// ErrUnreadableFile means the upload could not be decoded with any of
// the supported text encodings.
var ErrUnreadableFile = errors.New(constants.ErrUnreadableCSV)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeStatement turns the raw upload into text. Encodings are tried
// in priority order: UTF-8 with BOM, plain UTF-8, ISO 8859-1,
// Windows-1252.
func decodeStatement(content []byte) (string, error) {
	if bytes.HasPrefix(content, utf8BOM) {
		stripped := content[len(utf8BOM):]
		if utf8.Valid(stripped) {
			return string(stripped), nil
		}
	}
	if utf8.Valid(content) {
		return string(content), nil
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(content)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", ErrUnreadableFile
}

// findHeaderLine returns the index of the first line that looks like a
// statement header row. Bank exports often put disclaimers and account
// metadata above the actual table.
func findHeaderLine(lines []string) int {
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range constants.HeaderRowKeywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return 0
}

// sniffDelimiter probes the header line against the candidate
// delimiters and picks the most frequent one. Semicolon wins ties and
// empty probes.
func sniffDelimiter(header string) rune {
	best := constants.StatementDelimiters[0]
	bestCount := 0
	for _, cand := range constants.StatementDelimiters {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// columnIndexes maps each logical statement column to a physical
// column, -1 when the file has no such column.
type columnIndexes struct {
	date         int
	valueDate    int
	counterparty int
	iban         int
	purpose      int
	amount       int
	currency     int
	debit        int
	credit       int
}

func findColumn(header []string, keywords []string) int {
	for _, kw := range keywords {
		for i, cell := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), kw) {
				return i
			}
		}
	}
	return -1
}

func mapColumns(header []string) columnIndexes {
	return columnIndexes{
		date:         findColumn(header, constants.HeaderKeywordsDate),
		valueDate:    findColumn(header, constants.HeaderKeywordsValueDate),
		counterparty: findColumn(header, constants.HeaderKeywordsCounterparty),
		iban:         findColumn(header, constants.HeaderKeywordsIBAN),
		purpose:      findColumn(header, constants.HeaderKeywordsPurpose),
		amount:       findColumn(header, constants.HeaderKeywordsAmount),
		currency:     findColumn(header, constants.HeaderKeywordsCurrency),
		debit:        findColumn(header, constants.HeaderKeywordsDebit),
		credit:       findColumn(header, constants.HeaderKeywordsCredit),
	}
}

func (c columnIndexes) maxIndex() int {
	max := 0
	for _, idx := range []int{
		c.date, c.valueDate, c.counterparty, c.iban, c.purpose,
		c.amount, c.currency, c.debit, c.credit,
	} {
		if idx > max {
			max = idx
		}
	}
	return max
}

// parseStatementDate tries the supported date layouts in order.
func parseStatementDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range constants.StatementDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var ibanPrefixRe = regexp.MustCompile(`^[A-Z]{2}\d{2}`)

// NormalizeIBAN strips all whitespace and uppercases the identifier.
// Anything that does not look IBAN-shaped afterwards is treated as
// absent, never as a row error.
func NormalizeIBAN(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.ToUpper(cleaned)
	if ibanPrefixRe.MatchString(cleaned) {
		return cleaned
	}
	return ""
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseStatement decodes and parses one uploaded statement file into
// normalized records, preserving file order. Rows whose date or amount
// cannot be parsed are dropped and counted, never fatal.
func ParseStatement(content []byte) (ParseResult, error) {
	text, err := decodeStatement(content)
	if err != nil {
		return ParseResult{}, err
	}

	lines := splitLines(text)
	start := findHeaderLine(lines)
	if start >= len(lines) {
		return ParseResult{}, nil
	}
	delimiter := sniffDelimiter(lines[start])

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		// a malformed table yields no records rather than an error;
		// the caller decides whether empty is acceptable
		return ParseResult{}, nil
	}

	cols := mapColumns(rows[0])
	maxIdx := cols.maxIndex()

	var result ParseResult
	for _, row := range rows[1:] {
		if len(row) == 0 || isBlankRow(row) {
			continue
		}
		if len(row) <= maxIdx {
			continue
		}

		bookingDate, ok := parseStatementDate(cellValue(row, cols.date))
		if !ok {
			result.Skipped++
			continue
		}

		amount, haveAmount := extractAmount(row, cols)
		if !haveAmount {
			result.Skipped++
			continue
		}

		currency := cellValue(row, cols.currency)
		if currency == "" {
			currency = constants.SepaCurrency
		}

		result.Records = append(result.Records, RawBankRecord{
			BookingDate:  bookingDate,
			Counterparty: cellValue(row, cols.counterparty),
			IBAN:         NormalizeIBAN(cellValue(row, cols.iban)),
			Purpose:      cellValue(row, cols.purpose),
			Amount:       amount,
			Currency:     currency,
		})
	}
	return result, nil
}

// extractAmount reads the unified amount column, falling back to the
// debit/credit column pair: a positive credit is an inflow, a positive
// debit an outflow.
func extractAmount(row []string, cols columnIndexes) (d decimal.Decimal, ok bool) {
	if cols.amount >= 0 {
		raw := strings.TrimSpace(strings.TrimPrefix(cellValue(row, cols.amount), "+"))
		if amount, parsed := ParseAmount(raw); parsed {
			return amount, true
		}
	}
	if cols.debit >= 0 && cols.credit >= 0 {
		if credit, parsed := ParseAmount(cellValue(row, cols.credit)); parsed && credit.IsPositive() {
			return credit, true
		}
		if debit, parsed := ParseAmount(cellValue(row, cols.debit)); parsed && debit.IsPositive() {
			return debit.Neg(), true
		}
	}
	return decimal.Decimal{}, false
}

// splitLines splits on \n and tolerates \r\n exports.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
