package incidents

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opswatch/opswatch/internal/domain"
	"github.com/opswatch/opswatch/internal/pkg/httputil"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the incidents module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.CreateIncident)
	r.Get("/", h.ListIncidents)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetIncident)
		r.Patch("/", h.UpdateIncident)
		r.Patch("/team-shift", h.UpdateTeamShift)
		r.Post("/comments", h.AddComment)
		r.Post("/tags", h.AddTag)
		r.Post("/assign", h.AssignIncident)
		r.Get("/audit", h.GetAuditTrail)
	})
}

// CreateIncidentRequest represents the request body for creating an incident.
type CreateIncidentRequest struct {
	Title          string        `json:"title" validate:"required,min=1,max=255"`
	Description    string        `json:"description"`
	Status         string        `json:"status" validate:"omitempty,oneof=open triaged in_progress resolved closed"`
	Severity       string        `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Tags           []string      `json:"tags"`
	OrganizationID string        `json:"organization_id" validate:"required"`
	Assignee       *string       `json:"assignee"`
	AssignedTeam   *string       `json:"assigned_team"`
	Shift          *domain.Shift `json:"shift"`
}

// UpdateIncidentRequest represents the request body for the incident
// PATCH endpoint. Status changes and team/shift changes may be combined
// in one request; at least one updatable field must be present.
type UpdateIncidentRequest struct {
	Status          string        `json:"status" validate:"omitempty,oneof=open triaged in_progress resolved closed"`
	ResolutionNotes string        `json:"resolution_notes"`
	AssignedTeam    *string       `json:"assigned_team"`
	Shift           *domain.Shift `json:"shift"`
	Actor           string        `json:"actor"`
}

// UpdateTeamShiftRequest represents the request body for the team-shift endpoint.
type UpdateTeamShiftRequest struct {
	AssignedTeam *string       `json:"assigned_team"`
	Shift        *domain.Shift `json:"shift"`
	Actor        string        `json:"actor"`
}

// AddCommentRequest represents the request body for adding a comment.
type AddCommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1"`
	Actor   string `json:"actor"`
}

// AddTagRequest represents the request body for adding a tag.
type AddTagRequest struct {
	Tag string `json:"tag" validate:"required,min=1"`
}

// AssignRequest represents the request body for assigning an incident.
type AssignRequest struct {
	Assignee string `json:"assignee" validate:"required,min=1"`
	Actor    string `json:"actor"`
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Create(r.Context(), CreateIncidentInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.IncidentStatus(req.Status),
		Severity:       domain.Severity(req.Severity),
		Tags:           req.Tags,
		OrganizationID: req.OrganizationID,
		Assignee:       req.Assignee,
		AssignedTeam:   req.AssignedTeam,
		Shift:          req.Shift,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filters := Filters{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := domain.IncidentStatus(v)
		filters.Status = &status
	}
	if v := q.Get("severity"); v != "" {
		severity := domain.Severity(v)
		filters.Severity = &severity
	}
	if v := q.Get("organization_id"); v != "" {
		filters.OrganizationID = &v
	}
	if v := q.Get("assigned_team"); v != "" {
		filters.AssignedTeam = &v
	}
	if v := q.Get("shift"); v != "" {
		shift := domain.Shift(v)
		filters.Shift = &shift
	}

	incidents, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

// UpdateIncident handles PATCH /incidents/{id} request.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if req.Status == "" && req.AssignedTeam == nil && req.Shift == nil {
		httputil.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	actor := h.actor(r, req.Actor)

	// A rejected status change must leave the incident untouched, so the
	// gate runs before the team/shift write it may be combined with.
	if req.Status != "" {
		if err := ValidateStatusChange(domain.IncidentStatus(req.Status), req.ResolutionNotes, actor); err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	var incident *domain.Incident
	var err error

	if req.AssignedTeam != nil || req.Shift != nil {
		incident, err = h.service.UpdateTeamAndShift(r.Context(), id, req.AssignedTeam, req.Shift, actor)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	if req.Status != "" {
		incident, err = h.service.UpdateStatus(r.Context(), id, domain.IncidentStatus(req.Status), req.ResolutionNotes, actor)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
	}

	httputil.Success(w, http.StatusOK, incident)
}

// UpdateTeamShift handles PATCH /incidents/{id}/team-shift request.
func (h *Handler) UpdateTeamShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTeamShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	incident, err := h.service.UpdateTeamAndShift(r.Context(), id, req.AssignedTeam, req.Shift, h.actor(r, req.Actor))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AddComment handles POST /incidents/{id}/comments request.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.AddComment(r.Context(), id, h.actor(r, req.Actor), req.Comment)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AddTag handles POST /incidents/{id}/tags request.
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.AddTag(r.Context(), id, req.Tag)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AssignIncident handles POST /incidents/{id}/assign request.
func (h *Handler) AssignIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Assign(r.Context(), id, req.Assignee, h.actor(r, req.Actor))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// GetAuditTrail handles GET /incidents/{id}/audit request.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Trail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, entries)
}

// actor picks the mutation actor: an explicit body value wins, then the
// authenticated user id from the request context.
func (h *Handler) actor(r *http.Request, bodyActor string) string {
	if bodyActor != "" {
		return bodyActor
	}
	return httputil.GetUserID(r.Context())
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
		{Error: ErrTitleRequired, Status: http.StatusBadRequest},
		{Error: ErrOrganizationRequired, Status: http.StatusBadRequest},
		{Error: ErrResolutionRequired, Status: http.StatusBadRequest},
		{Error: ErrCommentRequired, Status: http.StatusBadRequest},
		{Error: ErrTagRequired, Status: http.StatusBadRequest},
		{Error: ErrAssigneeRequired, Status: http.StatusBadRequest},
		{Error: ErrNothingToUpdate, Status: http.StatusBadRequest},
		{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		{Error: ErrInvalidSeverity, Status: http.StatusBadRequest},
		{Error: ErrInvalidTeam, Status: http.StatusBadRequest},
		{Error: ErrInvalidShift, Status: http.StatusBadRequest},
	})
}
