// Package postgres provides PostgreSQL implementation of the audit repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opswatch/opswatch/internal/domain"
)

// Repository implements audit.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const appendQuery = `
	INSERT INTO audit_log (incident_id, action, actor, details)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
`

// Append writes one audit entry.
func (r *Repository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	err := r.db.QueryRow(ctx, appendQuery,
		entry.IncidentID,
		entry.Action,
		entry.Actor,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// AppendTx writes one audit entry inside an existing transaction.
func (r *Repository) AppendTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLogEntry) error {
	err := tx.QueryRow(ctx, appendQuery,
		entry.IncidentID,
		entry.Action,
		entry.Actor,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByIncident returns entries for an incident ascending by creation
// time. The seq tiebreaker keeps append order for entries written in
// the same transaction, where created_at is identical.
func (r *Repository) ListByIncident(ctx context.Context, incidentID string) ([]*domain.AuditLogEntry, error) {
	query := `
		SELECT id, incident_id, action, actor, details, created_at
		FROM audit_log
		WHERE incident_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.AuditLogEntry, 0)
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.IncidentID,
			&entry.Action,
			&entry.Actor,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
