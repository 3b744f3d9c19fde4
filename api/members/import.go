package members

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"VereinsKasse/api"
	"VereinsKasse/api/constants"
)

// parseMemberListFile reads an uploaded member list into rows of cells.
// CSV is read semicolon-delimited (the export format of common German
// spreadsheet tools), XLSX and legacy XLS through the first sheet.
func parseMemberListFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.Comma = ';'
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		return readLegacyXLS(file)
	}
	return nil, errors.New("unsupported file type")
}

// readLegacyXLS parses pre-2007 Excel files. xlsReader only works with
// file paths, so the upload goes through a temp file.
func readLegacyXLS(file multipart.File) ([][]string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "memberlist-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}
	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, errors.New("xls has no readable sheet")
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, col := range row.GetCols() {
			cells = append(cells, col.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// member-list column synonyms, lowercased substring match like the
// statement parser uses for bank headers.
var importColumns = []struct {
	field    string
	keywords []string
}{
	{"first_name", []string{"vorname", "first name", "first_name"}},
	{"last_name", []string{"nachname", "name", "last name", "last_name"}},
	{"email", []string{"email", "e-mail", "mail"}},
	{"phone", []string{"telefon", "phone"}},
	{"member_number", []string{"mitgliedsnummer", "nummer", "number"}},
	{"beitrag", []string{"beitrag", "fee"}},
	{"iban", []string{"iban", "konto"}},
}

func mapImportColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for _, def := range importColumns {
		for _, kw := range def.keywords {
			found := -1
			for i, cell := range header {
				if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), kw) {
					found = i
					break
				}
			}
			if found >= 0 {
				if _, taken := cols[def.field]; !taken {
					cols[def.field] = found
				}
				break
			}
		}
	}
	return cols
}

func cellAt(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ImportMembersHandler handles POST /members/import: bulk member
// creation from an uploaded CSV or XLSX list.
func ImportMembersHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		fileHeader := files[0]
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		file, err := fileHeader.Open()
		if err != nil {
			http.Error(w, "Failed to open file: "+fileHeader.Filename, http.StatusBadRequest)
			return
		}
		rows, err := parseMemberListFile(file, ext)
		file.Close()
		if err != nil || len(rows) < 2 {
			http.Error(w, "Invalid or empty file: "+fileHeader.Filename, http.StatusBadRequest)
			return
		}

		cols := mapImportColumns(rows[0])
		if _, ok := cols["last_name"]; !ok {
			http.Error(w, "Spalte Nachname nicht gefunden", http.StatusUnprocessableEntity)
			return
		}

		created := 0
		skipped := 0
		for _, row := range rows[1:] {
			firstName := cellAt(row, cols, "first_name")
			lastName := cellAt(row, cols, "last_name")
			if lastName == "" {
				skipped++
				continue
			}
			if firstName == "" {
				firstName = "-"
			}
			m := Member{
				UserID:       ownerID,
				FirstName:    firstName,
				LastName:     lastName,
				Email:        optional(cellAt(row, cols, "email")),
				Phone:        optional(cellAt(row, cols, "phone")),
				MemberNumber: optional(cellAt(row, cols, "member_number")),
				IBAN:         optional(strings.ReplaceAll(cellAt(row, cols, "iban"), " ", "")),
				Status:       constants.MemberStatusActive,
			}
			if raw := cellAt(row, cols, "beitrag"); raw != "" {
				normalized := raw
				if strings.Contains(normalized, ",") {
					normalized = strings.ReplaceAll(normalized, ".", "")
					normalized = strings.ReplaceAll(normalized, ",", ".")
				}
				if fee, err := decimal.NewFromString(normalized); err == nil && !fee.IsNegative() {
					m.BeitragMonthly = &fee
				}
			}
			if err := Create(r.Context(), pool, &m); err != nil {
				skipped++
				continue
			}
			created++
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"created": created,
			"skipped": skipped,
		})
	}
}
