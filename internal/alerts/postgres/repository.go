// Package postgres provides PostgreSQL implementation of alerts repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opswatch/opswatch/internal/alerts"
	"github.com/opswatch/opswatch/internal/domain"
)

const alertColumns = `
	id, source, type, severity, status, description, detected_at,
	organization_id, raw_data, incident_id, created_at, updated_at
`

// Repository implements alerts.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create creates a new alert in the database.
func (r *Repository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (
			source, type, severity, status, description, detected_at,
			organization_id, raw_data, incident_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		alert.Source,
		alert.Type,
		alert.Severity,
		alert.Status,
		alert.Description,
		alert.DetectedAt,
		alert.OrganizationID,
		alert.RawData,
		alert.IncidentID,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alerts.ErrAlertNotFound
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

// List retrieves alerts with optional filters, newest detection first,
// capped at 100 rows.
func (r *Repository) List(ctx context.Context, filters alerts.Filters) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filters.Status)
		argNum++
	}
	if filters.Severity != nil {
		query += fmt.Sprintf(" AND severity = $%d", argNum)
		args = append(args, *filters.Severity)
		argNum++
	}
	if filters.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, *filters.Type)
		argNum++
	}
	if filters.OrganizationID != nil {
		query += fmt.Sprintf(" AND organization_id = $%d", argNum)
		args = append(args, *filters.OrganizationID)
	}

	query += " ORDER BY detected_at DESC LIMIT 100"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, alert)
	}

	return list, rows.Err()
}

// UpdateStatus sets the alert's status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error) {
	query := `
		UPDATE alerts SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + alertColumns

	alert, err := scanAlert(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, alerts.ErrAlertNotFound
		}
		return nil, fmt.Errorf("update alert status: %w", err)
	}
	return alert, nil
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var alert domain.Alert
	err := row.Scan(
		&alert.ID,
		&alert.Source,
		&alert.Type,
		&alert.Severity,
		&alert.Status,
		&alert.Description,
		&alert.DetectedAt,
		&alert.OrganizationID,
		&alert.RawData,
		&alert.IncidentID,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}
