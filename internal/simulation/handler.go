package simulation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opswatch/opswatch/internal/pkg/httputil"
)

// Handler handles HTTP requests for the simulation module.
type Handler struct {
	service   *Service
	scheduler *Scheduler
	validator *validator.Validate
}

// NewHandler creates a new simulation handler.
func NewHandler(service *Service, scheduler *Scheduler) *Handler {
	return &Handler{
		service:   service,
		scheduler: scheduler,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the simulation module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/incident", h.SimulateIncident)
	r.Post("/demo-mode", h.DemoMode)
}

// SimulateIncidentRequest represents the request body for one-shot simulation.
type SimulateIncidentRequest struct {
	Type string `json:"type" validate:"required,min=1"`
}

// DemoModeRequest represents the request body for the demo-mode toggle.
type DemoModeRequest struct {
	Action string `json:"action" validate:"required,oneof=start stop"`
}

// SimulateIncident handles POST /simulate/incident request.
func (h *Handler) SimulateIncident(w http.ResponseWriter, r *http.Request) {
	var req SimulateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.SimulateByType(r.Context(), req.Type)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUnknownTemplate, Status: http.StatusBadRequest},
		})
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// DemoMode handles POST /simulate/demo-mode request.
func (h *Handler) DemoMode(w http.ResponseWriter, r *http.Request) {
	var req DemoModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	var message string
	switch req.Action {
	case "start":
		if h.scheduler.Start() {
			message = "demo mode started"
		} else {
			message = "demo mode already running"
		}
	case "stop":
		if h.scheduler.Stop() {
			message = "demo mode stopped"
		} else {
			message = "demo mode not running"
		}
	}

	httputil.Success(w, http.StatusOK, map[string]string{"message": message})
}
