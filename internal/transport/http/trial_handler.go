package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "klvcli/internal/errors"
	"klvcli/internal/trial"
)

// TrialHandler exposes trial status and activation.
type TrialHandler struct {
	manager      *trial.Manager
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTrialHandler creates a new trial handler.
func NewTrialHandler(manager *trial.Manager, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TrialHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrialHandler{
		manager:      manager,
		logger:       logger.With(slog.String("component", "trial_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the trial routes. These stay reachable after expiry so the
// user can still see the countdown and activate.
func (h *TrialHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Status)
	r.Post("/activate", h.Activate)
	return r
}

// Status handles GET /api/trial.
func (h *TrialHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.manager.Status())
}

type activateRequest struct {
	Code string `json:"code"`
}

// Activate handles POST /api/trial/activate.
func (h *TrialHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	if req.Code == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("code", "activation code is required"))
		return
	}

	if err := h.manager.Activate(req.Code); err != nil {
		switch {
		case errors.Is(err, trial.ErrInvalidActivation), errors.Is(err, trial.ErrNoActivation):
			h.errorHandler.HandleError(w, r, apierrors.ErrActivationInvalid)
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "activation accepted")
	render.JSON(w, r, h.manager.Status())
}
