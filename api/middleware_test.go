package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUserIDLeavesMultipartBodyUnparsed(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_id", "7"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/bank/import", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	assert.Equal(t, int64(0), extractUserID(r))
	assert.Nil(t, r.MultipartForm, "upload body must stay untouched for the handler's size limit")

	r.Header.Set("X-User-Id", "7")
	assert.Equal(t, int64(7), extractUserID(r))
	assert.Nil(t, r.MultipartForm)
}

func TestExtractUserIDReadsURLEncodedForm(t *testing.T) {
	form := url.Values{"user_id": {"9"}}
	r := httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, int64(9), extractUserID(r))
}

func TestExtractUserIDHeaderAndQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/members?user_id=3", nil)
	assert.Equal(t, int64(3), extractUserID(r))

	r = httptest.NewRequest(http.MethodGet, "/members", nil)
	r.Header.Set("X-User-Id", "4")
	assert.Equal(t, int64(4), extractUserID(r))

	r = httptest.NewRequest(http.MethodGet, "/members", nil)
	assert.Equal(t, int64(0), extractUserID(r))
}
