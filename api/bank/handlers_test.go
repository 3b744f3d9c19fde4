package bank

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VereinsKasse/api"
	"VereinsKasse/internal/config"
)

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func importRequest(body io.Reader, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/bank/import", body)
	r.Header.Set("Content-Type", contentType)
	ctx := context.WithValue(r.Context(), api.OwnerIDKey, int64(1))
	return r.WithContext(ctx)
}

func TestImportRejectsOversizeUpload(t *testing.T) {
	buf, ct := multipartUpload(t, "statement.csv",
		bytes.Repeat([]byte("x"), int(config.MaxStatementUploadBytes)+1))

	r := importRequest(buf, ct)
	w := httptest.NewRecorder()
	ImportBankStatement(nil)(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportRejectsOversizeChunkedUpload(t *testing.T) {
	buf, ct := multipartUpload(t, "statement.csv",
		bytes.Repeat([]byte("x"), int(config.MaxStatementUploadBytes)+1))

	// io.MultiReader hides the buffer type so no Content-Length is
	// derived, like a chunked transfer.
	r := importRequest(io.MultiReader(buf), ct)
	r.ContentLength = -1
	w := httptest.NewRecorder()
	ImportBankStatement(nil)(w, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportRejectsNonCSVExtension(t *testing.T) {
	buf, ct := multipartUpload(t, "statement.xlsx", []byte("Buchungstag;Betrag\n"))

	r := importRequest(buf, ct)
	w := httptest.NewRecorder()
	ImportBankStatement(nil)(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRejectsMissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("add_to_kassenbuch", "true"))
	require.NoError(t, mw.Close())

	r := importRequest(&buf, mw.FormDataContentType())
	w := httptest.NewRecorder()
	ImportBankStatement(nil)(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
