package historyentries

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ultramdmemo/internal/history"
)

func newTestRouter(t *testing.T) (*chi.Mux, *history.Store) {
	t.Helper()

	store := history.NewStore(history.StoreConfig{Dir: t.TempDir()})
	p := HandlerParams{Store: store, Logger: zap.NewNop().Sugar()}

	r := chi.NewRouter()
	NewListHandler(p).RegisterRoute(r)
	NewGetByIDHandler(p).RegisterRoute(r)
	NewHTMLHandler(p).RegisterRoute(r)
	NewDeleteHandler(p).RegisterRoute(r)
	return r, store
}

func seed(t *testing.T, store *history.Store, id, title string, at time.Time) {
	t.Helper()
	meta := history.Meta{ID: id, CreatedAt: at, Title: title, Intent: "auto", Mode: "balanced", Paths: store.Paths(id)}
	require.NoError(t, store.Save(context.Background(), id, "input "+id, "# "+title+"\n\n## 要点\n- a\n", meta))
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestList_EmptyIsArray(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	rr := do(r, http.MethodGet, "/v1/history")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestList_SortedAndSearch(t *testing.T) {
	t.Parallel()

	r, store := newTestRouter(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, store, "a", "Alpha meeting", base)
	seed(t, store, "b", "Beta", base.Add(time.Hour))
	seed(t, store, "c", "gamma MEETING", base.Add(2*time.Hour))

	var got listResponse
	rr := do(r, http.MethodGet, "/v1/history")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Items, 3)
	require.Equal(t, "c", got.Items[0].ID)

	rr = do(r, http.MethodGet, "/v1/history?q=meeting")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Items, 2)
	require.Equal(t, "c", got.Items[0].ID)
	require.Equal(t, "a", got.Items[1].ID)
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	r, store := newTestRouter(t)
	seed(t, store, "x1", "Title", time.Now().UTC())

	rr := do(r, http.MethodGet, "/v1/history/x1")
	require.Equal(t, http.StatusOK, rr.Code)

	var got entryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "input x1", got.Input)
	require.Contains(t, got.Markdown, "# Title")
	require.Equal(t, "x1", got.Meta.ID)

	rr = do(r, http.MethodGet, "/v1/history/missing")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), `"code":"NOT_FOUND"`)

	rr = do(r, http.MethodGet, "/v1/history/bad.id")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHTML(t *testing.T) {
	t.Parallel()

	r, store := newTestRouter(t)
	seed(t, store, "h1", "Rendered", time.Now().UTC())

	rr := do(r, http.MethodGet, "/v1/history/h1/html")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rr.Body.String(), "<h1>Rendered</h1>")
	require.Contains(t, rr.Body.String(), "<h2>要点</h2>")
}

func TestDelete(t *testing.T) {
	t.Parallel()

	r, store := newTestRouter(t)
	seed(t, store, "d1", "Doomed", time.Now().UTC())

	rr := do(r, http.MethodDelete, "/v1/history/d1")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(r, http.MethodGet, "/v1/history/d1")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
