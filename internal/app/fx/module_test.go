package fx

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"

	"ultramdmemo/internal/apppaths"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestHTTPModule_ServesHealthAndEmptyHistory(t *testing.T) {
	home := t.TempDir()
	port := freePort(t)
	t.Setenv("MDMEMO_HOME", home)
	t.Setenv("APP_PORT", fmt.Sprint(port))
	t.Setenv("LOG_LEVEL", "error")

	var paths apppaths.Paths
	app := fxtest.New(t,
		EventLogger(zapcore.DebugLevel),
		Module,
		HTTPModule,
		fx.Populate(&paths),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.Equal(t, home, paths.Base)
	require.DirExists(t, paths.HistoryDir())

	client := &http.Client{Timeout: 5 * time.Second}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	resp, err := client.Get(base + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		OK             bool   `json:"ok"`
		BaseDir        string `json:"base_dir"`
		HistoryCatalog string `json:"history_catalog"`
	}
	require.NoError(t, json.Unmarshal(body, &health))
	require.True(t, health.OK)
	require.Equal(t, home, health.BaseDir)
	require.Equal(t, "ready", health.HistoryCatalog)

	resp, err = client.Get(base + "/v1/history")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"items":[]}`, string(body))

	// Nothing is installed under a fresh home, so the transform route
	// reports the CLI as unavailable.
	resp, err = client.Post(base+"/v1/transform", "application/json", strings.NewReader(`{"text":"hello"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
