package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	"ultramdmemo/internal/apppaths"
	"ultramdmemo/internal/pkg/render"
)

const (
	CatalogReady    = "ready"
	CatalogUnready  = "unready"
	CatalogDisabled = "disabled"
)

// CatalogState reports whether the history catalog finished migrating.
type CatalogState interface {
	Ready() bool
}

type Handler struct {
	baseDir string
	catalog CatalogState
}

type NewHandlerParams struct {
	fx.In

	Paths apppaths.Paths
	// Catalog is nil when the catalog is switched off.
	Catalog CatalogState `optional:"true"`
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{baseDir: p.Paths.Base, catalog: p.Catalog}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/health", h.Handle)
}

type response struct {
	OK             bool   `json:"ok"`
	BaseDir        string `json:"base_dir"`
	HistoryCatalog string `json:"history_catalog"`
}

// Handle never probes the CLI; /v1/status does that.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	render.ChiJSON(w, http.StatusOK, response{
		OK:             true,
		BaseDir:        h.baseDir,
		HistoryCatalog: h.catalogState(),
	})
}

func (h *Handler) catalogState() string {
	switch {
	case h.catalog == nil:
		return CatalogDisabled
	case h.catalog.Ready():
		return CatalogReady
	default:
		return CatalogUnready
	}
}
