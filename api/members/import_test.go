package members

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFile struct{ *bytes.Reader }

func (memoryFile) Close() error { return nil }

func TestParseMemberListFileDispatch(t *testing.T) {
	rows, err := parseMemberListFile(
		memoryFile{bytes.NewReader([]byte("Nachname;Vorname\nMustermann;Max\n"))}, ".csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Mustermann", "Max"}, rows[1])

	// Garbage .xls content reaches the legacy workbook parser and is
	// rejected there, not as an unsupported type.
	_, err = parseMemberListFile(memoryFile{bytes.NewReader([]byte("not a workbook"))}, ".xls")
	require.Error(t, err)
	assert.NotEqual(t, "unsupported file type", err.Error())

	_, err = parseMemberListFile(memoryFile{bytes.NewReader(nil)}, ".ods")
	assert.EqualError(t, err, "unsupported file type")
}

func TestMapImportColumnsGermanHeader(t *testing.T) {
	header := []string{"Mitgliedsnummer", "Vorname", "Nachname", "E-Mail", "Telefon", "Beitrag", "IBAN"}
	cols := mapImportColumns(header)

	assert.Equal(t, 0, cols["member_number"])
	assert.Equal(t, 1, cols["first_name"])
	assert.Equal(t, 2, cols["last_name"])
	assert.Equal(t, 3, cols["email"])
	assert.Equal(t, 4, cols["phone"])
	assert.Equal(t, 5, cols["beitrag"])
	assert.Equal(t, 6, cols["iban"])
}

func TestMapImportColumnsNameFallback(t *testing.T) {
	cols := mapImportColumns([]string{"Name", "Konto"})

	idx, ok := cols["last_name"]
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, cols["iban"])
	_, ok = cols["first_name"]
	assert.False(t, ok)
}

func TestCellAtShortRow(t *testing.T) {
	cols := map[string]int{"last_name": 0, "email": 3}
	row := []string{"  Mustermann "}

	assert.Equal(t, "Mustermann", cellAt(row, cols, "last_name"))
	assert.Equal(t, "", cellAt(row, cols, "email"))
	assert.Equal(t, "", cellAt(row, cols, "phone"))
}
