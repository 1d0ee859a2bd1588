package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opswatch/opswatch/internal/pkg/httputil"
)

// Handler handles HTTP requests for the dashboard module.
type Handler struct {
	repo Repository
}

// NewHandler creates a new dashboard handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers all HTTP routes for the dashboard module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.GetSummary)
}

// GetSummary handles GET /dashboard/summary request. An empty
// organization query param aggregates across all organizations.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Summary(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, summary)
}
