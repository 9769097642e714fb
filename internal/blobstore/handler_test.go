package blobstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmarinho/classxp/internal/models"
)

func newHandlerServer(t *testing.T, credential string) (*httptest.Server, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	e := echo.New()
	NewHandler(backend, credential).Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, backend
}

func doBlob(t *testing.T, method, url, auth, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	var parsed map[string]any
	_ = json.NewDecoder(res.Body).Decode(&parsed)
	return res, parsed
}

func TestHandlerRequiresConfiguredCredential(t *testing.T) {
	srv, backend := newHandlerServer(t, "")

	res, body := doBlob(t, http.MethodGet, srv.URL+"/blob/records", "whatever", "")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "storage credential is not configured", body["message"])
	assert.Equal(t, "missing credential", body["error"])

	// the failed request must not have initialized anything
	_, ok, err := backend.GetBlob("records")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandlerRejectsBadCredential(t *testing.T) {
	srv, _ := newHandlerServer(t, "secret")

	res, body := doBlob(t, http.MethodGet, srv.URL+"/blob/records", "wrong", "")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "storage credential mismatch", body["message"])

	res, _ = doBlob(t, http.MethodPost, srv.URL+"/blob/records", "", `{"x":1}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestHandlerGetInitializesEmptyDocument(t *testing.T) {
	srv, backend := newHandlerServer(t, "secret")

	res, body := doBlob(t, http.MethodGet, srv.URL+"/blob/records", "secret", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "classes")
	assert.Contains(t, body, "lessons")
	assert.Contains(t, body, "studentRecords")

	// the empty document was written back, not just served
	data, ok, err := backend.GetBlob("records")
	require.NoError(t, err)
	require.True(t, ok)
	var doc models.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Empty(t, doc.Classes)
}

func TestHandlerPutGetRoundTrip(t *testing.T) {
	srv, _ := newHandlerServer(t, "secret")

	doc := models.EmptyDocument()
	doc.Classes = append(doc.Classes, models.ClassConfig{ID: "c1", Name: "Juniors"})
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	res, body := doBlob(t, http.MethodPost, srv.URL+"/blob/records", "secret", string(payload))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])

	res, body = doBlob(t, http.MethodGet, srv.URL+"/blob/records", "secret", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	classes, ok := body["classes"].([]any)
	require.True(t, ok)
	require.Len(t, classes, 1)
}

func TestLocalRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	local := NewLocal(backend)

	// first load initializes the empty document
	doc, err := local.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Classes)
	_, ok, err := backend.GetBlob(DocumentKey)
	require.NoError(t, err)
	assert.True(t, ok)

	doc.Classes = append(doc.Classes, models.ClassConfig{ID: "c1"})
	require.NoError(t, local.Save(context.Background(), doc))
	got, err := local.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Classes, 1)
}
