package fx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ultramdmemo/config"

	"go.uber.org/zap"
)

func TestNewMux_CORSPreflight_AllowsConfiguredOrigin(t *testing.T) {
	cfg := &config.Config{}
	cfg.CORSAllowedOrigins = []string{"http://localhost:5173"}

	r := NewMux(muxParams{
		Cfg:      cfg,
		Logger:   zap.NewNop().Sugar(),
		Handlers: nil,
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/transform", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin=%q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("missing allow-methods")
	}
}

func TestNewMux_CORSRejectsUnknownOrigin(t *testing.T) {
	cfg := &config.Config{}
	cfg.CORSAllowedOrigins = []string{"http://localhost:5173"}

	r := NewMux(muxParams{Cfg: cfg, Logger: zap.NewNop().Sugar()})

	req := httptest.NewRequest(http.MethodOptions, "/v1/transform", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin=%q, want empty", got)
	}
}

func TestNewMux_NoCORSWhenUnconfigured(t *testing.T) {
	r := NewMux(muxParams{Cfg: &config.Config{}, Logger: zap.NewNop().Sugar()})

	req := httptest.NewRequest(http.MethodOptions, "/v1/transform", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin=%q, want empty", got)
	}
}
