package historyentries

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/history"
	"ultramdmemo/internal/pkg/render"
	"ultramdmemo/internal/router"
)

type Store interface {
	LoadIndex(ctx context.Context) ([]history.Meta, error)
	Search(ctx context.Context, query string) ([]history.Meta, error)
	Load(ctx context.Context, id string) (*history.Entry, error)
	Delete(ctx context.Context, id string) error
}

type HandlerParams struct {
	fx.In

	Store  Store
	Logger *zap.SugaredLogger
}

// ListHandler serves GET /v1/history, optionally filtered by ?q=.
type ListHandler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewListHandler(p HandlerParams) *ListHandler {
	return &ListHandler{store: p.Store, logger: p.Logger}
}

func (h *ListHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/history", h.Handle)
}

type listResponse struct {
	Items []history.Meta `json:"items"`
}

func (h *ListHandler) Handle(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		items []history.Meta
		err   error
	)
	if q == "" {
		items, err = h.store.LoadIndex(r.Context())
	} else {
		items, err = h.store.Search(r.Context(), q)
	}
	if err != nil {
		h.logger.Errorw("history_list_failed", "q", q, "err", err)
		render.ChiAppErr(w, err)
		return
	}
	if items == nil {
		items = []history.Meta{}
	}
	render.ChiJSON(w, http.StatusOK, listResponse{Items: items})
}

// GetByIDHandler serves GET /v1/history/{id}.
type GetByIDHandler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewGetByIDHandler(p HandlerParams) *GetByIDHandler {
	return &GetByIDHandler{store: p.Store, logger: p.Logger}
}

func (h *GetByIDHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/history/{id}", h.Handle)
}

type entryResponse struct {
	Input    string       `json:"input"`
	Markdown string       `json:"markdown"`
	Meta     history.Meta `json:"meta"`
}

func (h *GetByIDHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	entry, err := h.store.Load(r.Context(), id)
	if err != nil {
		h.logger.Debugw("history_get_failed", "id", id, "err", err)
		render.ChiAppErr(w, err)
		return
	}
	render.ChiJSON(w, http.StatusOK, entryResponse{
		Input:    entry.Input,
		Markdown: entry.Output,
		Meta:     entry.Meta,
	})
}

// HTMLHandler serves GET /v1/history/{id}/html.
type HTMLHandler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewHTMLHandler(p HandlerParams) *HTMLHandler {
	return &HTMLHandler{store: p.Store, logger: p.Logger}
}

func (h *HTMLHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/history/{id}/html", h.Handle)
}

func (h *HTMLHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	entry, err := h.store.Load(r.Context(), id)
	if err != nil {
		h.logger.Debugw("history_html_failed", "id", id, "err", err)
		render.ChiAppErr(w, err)
		return
	}
	render.ChiMarkdownHTML(w, http.StatusOK, entry.Meta.Title, entry.Output)
}

// DeleteHandler serves DELETE /v1/history/{id}.
type DeleteHandler struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewDeleteHandler(p HandlerParams) *DeleteHandler {
	return &DeleteHandler{store: p.Store, logger: p.Logger}
}

func (h *DeleteHandler) RegisterRoute(r *chi.Mux) {
	r.Delete("/v1/history/{id}", h.Handle)
}

func (h *DeleteHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Errorw("history_delete_failed", "id", id, "err", err)
		render.ChiAppErr(w, err)
		return
	}
	h.logger.Infow("history_deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

var (
	_ router.Handler = (*ListHandler)(nil)
	_ router.Handler = (*GetByIDHandler)(nil)
	_ router.Handler = (*HTMLHandler)(nil)
	_ router.Handler = (*DeleteHandler)(nil)
)
