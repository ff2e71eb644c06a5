package status

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/pkg/render"
	"ultramdmemo/internal/router"
)

type InstallChecker interface {
	RuntimeInstalled() bool
	CliInstalled() bool
}

type LoginChecker interface {
	IsLoggedIn(ctx context.Context) (bool, error)
}

type Handler struct {
	install InstallChecker
	login   LoginChecker
	logger  *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	Install InstallChecker
	Login   LoginChecker
	Logger  *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{install: p.Install, login: p.Login, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/status", h.Handle)
}

type response struct {
	RuntimeInstalled bool `json:"runtime_installed"`
	CliInstalled     bool `json:"cli_installed"`
	LoggedIn         bool `json:"logged_in"`
}

// Handle derives every field on each call; nothing is cached.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := response{
		RuntimeInstalled: h.install.RuntimeInstalled(),
		CliInstalled:     h.install.CliInstalled(),
	}

	if resp.RuntimeInstalled && resp.CliInstalled {
		ok, err := h.login.IsLoggedIn(r.Context())
		if err != nil {
			h.logger.Warnw("status_login_check_failed", "err", err)
			render.ChiAppErr(w, err)
			return
		}
		resp.LoggedIn = ok
	}

	render.ChiJSON(w, http.StatusOK, resp)
}

var _ router.Handler = (*Handler)(nil)
