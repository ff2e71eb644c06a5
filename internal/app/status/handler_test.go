package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
)

type fakeInstall struct{ runtime, cli bool }

func (f fakeInstall) RuntimeInstalled() bool { return f.runtime }
func (f fakeInstall) CliInstalled() bool     { return f.cli }

type fakeLogin struct {
	calls int
	ok    bool
	err   error
}

func (f *fakeLogin) IsLoggedIn(ctx context.Context) (bool, error) {
	f.calls++
	return f.ok, f.err
}

func serve(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoute(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	return rr
}

func TestHandler_AllReady(t *testing.T) {
	t.Parallel()

	login := &fakeLogin{ok: true}
	h := NewHandler(NewHandlerParams{Install: fakeInstall{true, true}, Login: login, Logger: zap.NewNop().Sugar()})

	rr := serve(t, h)
	require.Equal(t, http.StatusOK, rr.Code)

	var got response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, response{RuntimeInstalled: true, CliInstalled: true, LoggedIn: true}, got)
	require.Equal(t, 1, login.calls)
}

func TestHandler_SkipsLoginProbeWhenNotInstalled(t *testing.T) {
	t.Parallel()

	login := &fakeLogin{ok: true}
	h := NewHandler(NewHandlerParams{Install: fakeInstall{true, false}, Login: login, Logger: zap.NewNop().Sugar()})

	rr := serve(t, h)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"runtime_installed":true,"cli_installed":false,"logged_in":false}`, rr.Body.String())
	require.Equal(t, 0, login.calls)
}

func TestHandler_CanceledProbe(t *testing.T) {
	t.Parallel()

	login := &fakeLogin{err: apperr.NewCanceled("auth probe", context.Canceled)}
	h := NewHandler(NewHandlerParams{Install: fakeInstall{true, true}, Login: login, Logger: zap.NewNop().Sugar()})

	rr := serve(t, h)
	require.Equal(t, 499, rr.Code)
	require.Contains(t, rr.Body.String(), `"code":"CANCELED"`)
}
