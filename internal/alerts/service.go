package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opswatch/opswatch/internal/domain"
)

// Notifier broadcasts alert changes to real-time subscribers.
type Notifier interface {
	AlertUpdated(ctx context.Context, alert *domain.Alert)
}

// Service implements alert business logic.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a new alert service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
	}
}

// CreateAlertInput holds data for creating an alert.
type CreateAlertInput struct {
	Source         string
	Type           string
	Severity       domain.Severity
	Status         domain.AlertStatus
	Description    *string
	DetectedAt     *time.Time
	OrganizationID string
	RawData        json.RawMessage
	IncidentID     *string
}

// Create persists a new alert received through the API. Status defaults
// to new, severity to medium and detected_at to now.
func (s *Service) Create(ctx context.Context, input CreateAlertInput) (*domain.Alert, error) {
	return s.create(ctx, input, "api")
}

// Ingest persists an alert arriving from the intake stream.
func (s *Service) Ingest(ctx context.Context, input CreateAlertInput) (*domain.Alert, error) {
	return s.create(ctx, input, "kafka")
}

func (s *Service) create(ctx context.Context, input CreateAlertInput, via string) (*domain.Alert, error) {
	if strings.TrimSpace(input.Source) == "" {
		return nil, ErrSourceRequired
	}
	if strings.TrimSpace(input.Type) == "" {
		return nil, ErrTypeRequired
	}
	if input.OrganizationID == "" {
		return nil, ErrOrganizationRequired
	}

	if input.Severity == "" {
		input.Severity = domain.SeverityMedium
	}
	if !input.Severity.IsValid() {
		return nil, ErrInvalidSeverity
	}
	if input.Status == "" {
		input.Status = domain.AlertStatusNew
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	detectedAt := time.Now().UTC()
	if input.DetectedAt != nil {
		detectedAt = *input.DetectedAt
	}

	alert := &domain.Alert{
		Source:         input.Source,
		Type:           input.Type,
		Severity:       input.Severity,
		Status:         input.Status,
		Description:    input.Description,
		DetectedAt:     detectedAt,
		OrganizationID: input.OrganizationID,
		RawData:        input.RawData,
		IncidentID:     input.IncidentID,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	recordAlertIngested(via, string(alert.Severity))

	s.notifier.AlertUpdated(ctx, alert)
	return alert, nil
}

// Get retrieves an alert by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Alert, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves alerts with optional filters, newest detection first.
func (s *Service) List(ctx context.Context, filters Filters) ([]*domain.Alert, error) {
	return s.repo.List(ctx, filters)
}

// UpdateStatus moves an alert to a new status and broadcasts the change.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	alert, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update alert status: %w", err)
	}

	s.notifier.AlertUpdated(ctx, alert)
	return alert, nil
}
