package alerts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opswatch/opswatch/internal/domain"
	"github.com/opswatch/opswatch/internal/pkg/httputil"
)

// Handler handles HTTP requests for the alerts module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new alerts handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the alerts module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.CreateAlert)
	r.Get("/", h.ListAlerts)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetAlert)
		r.Patch("/status", h.UpdateAlertStatus)
	})
}

// CreateAlertRequest represents the request body for creating an alert.
type CreateAlertRequest struct {
	Source         string          `json:"source" validate:"required,min=1,max=255"`
	Type           string          `json:"type" validate:"required,min=1,max=255"`
	Severity       string          `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status         string          `json:"status" validate:"omitempty,oneof=new in_progress resolved dismissed"`
	Description    *string         `json:"description"`
	DetectedAt     *time.Time      `json:"detected_at"`
	OrganizationID string          `json:"organization_id" validate:"required"`
	RawData        json.RawMessage `json:"raw_data"`
	IncidentID     *string         `json:"incident_id"`
}

// UpdateAlertStatusRequest represents the request body for the status endpoint.
type UpdateAlertStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress resolved dismissed"`
}

// CreateAlert handles POST /alerts request.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	alert, err := h.service.Create(r.Context(), CreateAlertInput{
		Source:         req.Source,
		Type:           req.Type,
		Severity:       domain.Severity(req.Severity),
		Status:         domain.AlertStatus(req.Status),
		Description:    req.Description,
		DetectedAt:     req.DetectedAt,
		OrganizationID: req.OrganizationID,
		RawData:        req.RawData,
		IncidentID:     req.IncidentID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, alert)
}

// GetAlert handles GET /alerts/{id} request.
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, alert)
}

// ListAlerts handles GET /alerts request.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filters := Filters{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := domain.AlertStatus(v)
		filters.Status = &status
	}
	if v := q.Get("severity"); v != "" {
		severity := domain.Severity(v)
		filters.Severity = &severity
	}
	if v := q.Get("type"); v != "" {
		filters.Type = &v
	}
	if v := q.Get("organization_id"); v != "" {
		filters.OrganizationID = &v
	}

	alerts, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, alerts)
}

// UpdateAlertStatus handles PATCH /alerts/{id}/status request.
func (h *Handler) UpdateAlertStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAlertStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	alert, err := h.service.UpdateStatus(r.Context(), id, domain.AlertStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, alert)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrAlertNotFound, Status: http.StatusNotFound},
		{Error: ErrSourceRequired, Status: http.StatusBadRequest},
		{Error: ErrTypeRequired, Status: http.StatusBadRequest},
		{Error: ErrOrganizationRequired, Status: http.StatusBadRequest},
		{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	})
}
