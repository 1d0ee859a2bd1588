// Package alerts manages raw detected alerts: API ingestion, the Kafka
// intake stream and the alert status lifecycle.
package alerts

import (
	"context"

	"github.com/opswatch/opswatch/internal/domain"
)

// Repository defines the interface for alert storage.
type Repository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	List(ctx context.Context, filters Filters) ([]*domain.Alert, error)
	UpdateStatus(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error)
}

// Filters holds filter options for listing alerts.
type Filters struct {
	Status         *domain.AlertStatus
	Severity       *domain.Severity
	Type           *string
	OrganizationID *string
}
