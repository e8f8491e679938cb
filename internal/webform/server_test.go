package webform

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audreymhoughton/lead-lab/internal/store"
)

func testServer(t *testing.T) (*Server, *store.CSV) {
	t.Helper()
	csv := store.NewCSV(filepath.Join(t.TempDir(), "leads.csv"))
	require.NoError(t, csv.Init())
	return NewServer(csv), csv
}

func postLead(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersForm(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="Company"`)
	assert.Contains(t, rec.Body.String(), "<option>Podcast</option>")
}

func TestAddLeadSavesAndRedirects(t *testing.T) {
	srv, csv := testServer(t)
	rec := postLead(t, srv.Router(), url.Values{
		"Company":  {"Acme Pod"},
		"Website":  {"acme.fm"},
		"Category": {"Podcast"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?ok=saved", rec.Header().Get("Location"))

	rows, err := csv.Load()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme Pod", rows[0]["Company"])
	assert.NotEmpty(t, rows[0]["Key"], "saved rows carry a derived key")
	assert.Equal(t, "New", rows[0]["Status"])
}

func TestAddLeadDeduplicatesAgainstExisting(t *testing.T) {
	srv, csv := testServer(t)
	h := srv.Router()

	postLead(t, h, url.Values{"Company": {"Acme Pod"}, "Website": {"acme.fm"}})
	postLead(t, h, url.Values{"Company": {"Acme Pod"}, "Website": {"acme.fm"}, "Notes": {"seen twice"}})

	rows, err := csv.Load()
	require.NoError(t, err)
	require.Len(t, rows, 1, "same identity submitted twice stays one row")
	assert.Equal(t, "seen twice", rows[0]["Notes"])
}

func TestAddLeadRejectsUnidentifiableRow(t *testing.T) {
	srv, csv := testServer(t)
	rec := postLead(t, srv.Router(), url.Values{"Company": {"Nameless Media"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/?err=")

	rows, err := csv.Load()
	require.NoError(t, err)
	assert.Empty(t, rows, "rejected submissions never land in the store")
}

func TestIndexListsSavedLeads(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.Router()
	postLead(t, h, url.Values{"Company": {"Acme Pod"}, "Website": {"acme.fm"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, rec.Body.String(), "<td>Acme Pod</td>")
	assert.Contains(t, rec.Body.String(), "<td>acme.fm</td>")
}
