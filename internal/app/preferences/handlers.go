package preferences

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/pkg/render"
	"ultramdmemo/internal/router"
	"ultramdmemo/internal/settings"
)

type Store interface {
	Load() settings.Settings
	Save(settings.Settings) error
}

type HandlerParams struct {
	fx.In

	Store  Store
	Logger *zap.SugaredLogger
}

type GetHandler struct {
	store Store
}

func NewGetHandler(p HandlerParams) *GetHandler { return &GetHandler{store: p.Store} }

func (h *GetHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/settings", h.Handle)
}

func (h *GetHandler) Handle(w http.ResponseWriter, r *http.Request) {
	render.ChiJSON(w, http.StatusOK, h.store.Load())
}

type PutHandler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewPutHandler(p HandlerParams) *PutHandler {
	return &PutHandler{store: p.Store, logger: p.Logger}
}

func (h *PutHandler) RegisterRoute(r *chi.Mux) {
	r.Put("/v1/settings", h.Handle)
}

// Handle merges the body over the current settings, so a partial body only
// changes the keys it names.
func (h *PutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	next := h.store.Load()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		render.ChiAppErr(w, apperr.NewInvalidRequest("invalid settings body: "+err.Error()))
		return
	}

	if err := h.store.Save(next); err != nil {
		h.logger.Warnw("settings_save_failed", "err", err)
		render.ChiAppErr(w, err)
		return
	}
	render.ChiJSON(w, http.StatusOK, next)
}

var (
	_ router.Handler = (*GetHandler)(nil)
	_ router.Handler = (*PutHandler)(nil)
)
