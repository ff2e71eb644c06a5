package transforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ultramdmemo/internal/apperr"
	"ultramdmemo/internal/pkg/render"
	"ultramdmemo/internal/router"
	"ultramdmemo/internal/settings"
	"ultramdmemo/internal/transform"
)

// maxBodyBytes leaves room for 20,000 four-byte characters plus JSON framing.
const maxBodyBytes = 128 << 10

type Transformer interface {
	Transform(ctx context.Context, req transform.Request) (*transform.Result, error)
}

type DefaultsLoader interface {
	Load() settings.Settings
}

type Handler struct {
	svc      Transformer
	defaults DefaultsLoader
	logger   *zap.SugaredLogger

	// One CLI run at a time; concurrent callers get 409.
	busy sync.Mutex
}

type NewHandlerParams struct {
	fx.In

	Service  Transformer
	Defaults DefaultsLoader
	Logger   *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{svc: p.Service, defaults: p.Defaults, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/transform", h.Handle)
}

// Absent optional fields fall back to the saved settings.
type request struct {
	Text       string  `json:"text"`
	Intent     *string `json:"intent"`
	Mode       *string `json:"mode"`
	IncludeRaw *bool   `json:"include_raw"`
	TitleHint  string  `json:"title_hint"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var in request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.ChiAppErr(w, &apperr.Error{Code: apperr.InputTooLarge, Message: "request body too large"})
			return
		}
		render.ChiAppErr(w, apperr.NewInvalidRequest("invalid JSON body"))
		return
	}

	req, err := h.buildRequest(in)
	if err != nil {
		render.ChiAppErr(w, err)
		return
	}

	if !h.busy.TryLock() {
		render.ChiErr(w, http.StatusConflict, "a transform is already running")
		return
	}
	defer h.busy.Unlock()

	res, err := h.svc.Transform(r.Context(), req)
	if err != nil {
		h.logger.Warnw("transform_request_failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		render.ChiAppErr(w, err)
		return
	}

	render.ChiJSON(w, http.StatusOK, res)
}

func (h *Handler) buildRequest(in request) (transform.Request, error) {
	req := h.defaults.Load().Request(in.Text)
	req.TitleHint = in.TitleHint

	if in.Intent != nil {
		intent, err := transform.ParseIntent(*in.Intent)
		if err != nil {
			return transform.Request{}, apperr.NewInvalidRequest(err.Error())
		}
		req.Intent = intent
	}
	if in.Mode != nil {
		mode, err := transform.ParseMode(*in.Mode)
		if err != nil {
			return transform.Request{}, apperr.NewInvalidRequest(err.Error())
		}
		req.Mode = mode
	}
	if in.IncludeRaw != nil {
		req.IncludeRaw = *in.IncludeRaw
	}
	return req, nil
}

var _ router.Handler = (*Handler)(nil)
