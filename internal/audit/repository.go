// Package audit provides the append-only audit trail for incident mutations.
package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/opswatch/opswatch/internal/domain"
)

// Repository defines the interface for audit trail storage.
type Repository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	AppendTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry) error
	ListByIncident(ctx context.Context, incidentID string) ([]*domain.AuditLogEntry, error)
}
