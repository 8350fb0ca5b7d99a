package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/testutil"
	"github.com/leapstack-labs/tabviz/internal/ui/features/common"
)

func newTestRouter(t *testing.T, previewRows int) (chi.Router, *state.SQLiteStore, sessions.Store) {
	t.Helper()
	store := state.NewSQLiteStore(10)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })

	sessionStore := sessions.NewCookieStore([]byte("test-secret"))
	router := chi.NewRouter()
	SetupRoutes(router, store, sessionStore, previewRows, testutil.NewTestLogger(t))
	return router, store, sessionStore
}

func sessionCookies(t *testing.T, store sessions.Store, id string) []*http.Cookie {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	sess, err := store.Get(r, common.SessionCookie)
	require.NoError(t, err)
	sess.Values["id"] = id
	require.NoError(t, sess.Save(r, w))
	return w.Result().Cookies()
}

func TestPreview(t *testing.T) {
	router, store, sessionStore := newTestRouter(t, 2)

	ds, err := dataset.New([]dataset.Column{
		{Name: "region", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("North"), dataset.Text("South"), dataset.Text("East"),
		}},
		{Name: "amount", Kind: dataset.KindInteger, Width: 8, Values: []dataset.Value{
			dataset.Int(10), dataset.Int(5), dataset.Int(7),
		}},
	})
	require.NoError(t, err)
	require.NoError(t, store.SaveDataset("sess-1", ds, "sales.csv"))

	req := httptest.NewRequest(http.MethodGet, "/api/preview", nil)
	for _, c := range sessionCookies(t, sessionStore, "sess-1") {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sales.csv", resp.Filename)
	assert.Equal(t, []string{"region", "amount"}, resp.Columns)

	// Preview is capped at previewRows even when more rows exist.
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, []string{"North", "10"}, resp.Rows[0])

	assert.Equal(t, 3, resp.Summary.Rows)
	assert.Equal(t, []string{"amount"}, resp.Classification.Numeric)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, "amount", resp.Stats[0].Name)
	assert.InDelta(t, 7.33, resp.Stats[0].Mean, 0.01)
}

func TestPreviewNoDataset(t *testing.T) {
	router, _, sessionStore := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/preview", nil)
	for _, c := range sessionCookies(t, sessionStore, "sess-1") {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
