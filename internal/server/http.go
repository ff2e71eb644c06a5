package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ultramdmemo/config"
)

// NewHTTPServer binds to loopback only. The write timeout leaves room for
// a full CLI run.
func NewHTTPServer(cfg *config.Config, mux *chi.Mux) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.AppPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.CliTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
