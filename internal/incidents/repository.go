// Package incidents implements the incident lifecycle: creation, the
// status state machine, comments, tags, assignment and the audit trail
// hookup.
package incidents

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/opswatch/opswatch/internal/domain"
)

// Repository defines the interface for incident storage.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context, filters Filters) ([]*domain.Incident, error)

	UpdateTeamShift(ctx context.Context, id string, team *string, shift *domain.Shift) (*domain.Incident, error)
	AppendComment(ctx context.Context, id string, comment domain.Comment) (*domain.Incident, error)
	AppendTag(ctx context.Context, id string, tag string) (*domain.Incident, error)
	UpdateAssignee(ctx context.Context, id string, assignee string) (*domain.Incident, error)

	// Transaction support
	BeginTx(ctx context.Context) (pgx.Tx, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.IncidentStatus, notes, resolvedBy *string) (*domain.Incident, error)
}

// Filters holds filter options for listing incidents.
type Filters struct {
	Status         *domain.IncidentStatus
	Severity       *domain.Severity
	OrganizationID *string
	AssignedTeam   *string
	Shift          *domain.Shift
}
