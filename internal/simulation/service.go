package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/opswatch/opswatch/internal/domain"
	"github.com/opswatch/opswatch/internal/incidents"
	"github.com/opswatch/opswatch/internal/priority"
)

// ErrUnknownTemplate is returned for a type name not in the catalog.
var ErrUnknownTemplate = errors.New("unknown template type")

// IncidentCreator persists synthetic incidents.
type IncidentCreator interface {
	Create(ctx context.Context, input incidents.CreateIncidentInput) (*domain.Incident, error)
}

// Service creates synthetic incidents from catalog templates.
type Service struct {
	creator        IncidentCreator
	organizationID string
}

// NewService creates a new simulation service. All synthetic incidents
// land in the given organization.
func NewService(creator IncidentCreator, organizationID string) *Service {
	return &Service{
		creator:        creator,
		organizationID: organizationID,
	}
}

// SimulateByType creates one synthetic incident from the named template.
func (s *Service) SimulateByType(ctx context.Context, typeName string) (*domain.Incident, error) {
	template, ok := TemplateByType(typeName)
	if !ok {
		return nil, ErrUnknownTemplate
	}
	return s.simulate(ctx, template)
}

func (s *Service) simulate(ctx context.Context, template Template) (*domain.Incident, error) {
	classification := priority.Classify(template.Attributes)

	incident, err := s.creator.Create(ctx, incidents.CreateIncidentInput{
		Title:             template.Title,
		Description:       "[DEMO MODE] " + template.Description,
		Severity:          template.Severity,
		Tags:              []string{"simulated", template.Type},
		OrganizationID:    s.organizationID,
		SimulatedPriority: &classification.Score,
		PriorityLabel:     &classification.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", template.Type, err)
	}
	return incident, nil
}
