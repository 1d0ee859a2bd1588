// Package postgres provides PostgreSQL implementation of incidents repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opswatch/opswatch/internal/domain"
	"github.com/opswatch/opswatch/internal/incidents"
)

// querier is an interface for database operations that both *pgxpool.Pool and pgx.Tx implement.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// incidentColumns is the full column list in scan order.
const incidentColumns = `
	id, title, description, status, severity, tags, comments, alerts,
	organization_id, assignee, assigned_team, shift,
	resolution_notes, resolved_by, resolved_at,
	simulated_priority, priority_label, created_at, updated_at
`

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create creates a new incident in the database.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (
			title, description, status, severity, tags, comments, alerts,
			organization_id, assignee, assigned_team, shift,
			simulated_priority, priority_label
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Severity,
		incident.Tags,
		incident.Comments,
		incident.AlertIDs,
		incident.OrganizationID,
		incident.Assignee,
		incident.AssignedTeam,
		incident.Shift,
		incident.SimulatedPriority,
		incident.PriorityLabel,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

// List retrieves incidents with optional filters, newest first, capped
// at 100 rows.
func (r *Repository) List(ctx context.Context, filters incidents.Filters) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE 1=1`
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
	if filters.OrganizationID != nil {
		query += fmt.Sprintf(" AND organization_id = $%d", argNum)
		args = append(args, *filters.OrganizationID)
		argNum++
	}
	if filters.AssignedTeam != nil {
		query += fmt.Sprintf(" AND assigned_team = $%d", argNum)
		args = append(args, *filters.AssignedTeam)
		argNum++
	}
	if filters.Shift != nil {
		query += fmt.Sprintf(" AND shift = $%d", argNum)
		args = append(args, *filters.Shift)
	}

	query += " ORDER BY created_at DESC LIMIT 100"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		list = append(list, incident)
	}

	return list, rows.Err()
}

// UpdateTeamShift updates whichever of assigned_team and shift is
// non-nil, leaving the other unchanged.
func (r *Repository) UpdateTeamShift(ctx context.Context, id string, team *string, shift *domain.Shift) (*domain.Incident, error) {
	query := "UPDATE incidents SET updated_at = NOW()"
	args := []interface{}{}
	argNum := 1

	if team != nil {
		query += fmt.Sprintf(", assigned_team = $%d", argNum)
		args = append(args, *team)
		argNum++
	}
	if shift != nil {
		query += fmt.Sprintf(", shift = $%d", argNum)
		args = append(args, *shift)
		argNum++
	}

	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", argNum, incidentColumns)
	args = append(args, id)

	return r.returningOne(ctx, r.db, query, args...)
}

// AppendComment appends one comment to the incident's comment sequence.
// The jsonb concatenation happens in the database, so concurrent
// appends cannot overwrite each other.
func (r *Repository) AppendComment(ctx context.Context, id string, comment domain.Comment) (*domain.Incident, error) {
	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("marshal comment: %w", err)
	}

	query := `
		UPDATE incidents SET comments = comments || $1::jsonb, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + incidentColumns

	return r.returningOne(ctx, r.db, query, payload, id)
}

// AppendTag inserts a tag into the incident's tag set. The insert is
// conditional inside the statement, so concurrent appends of the same
// tag cannot produce duplicates.
func (r *Repository) AppendTag(ctx context.Context, id string, tag string) (*domain.Incident, error) {
	query := `
		UPDATE incidents
		SET tags = CASE WHEN $1 = ANY(tags) THEN tags ELSE array_append(tags, $1) END,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING ` + incidentColumns

	return r.returningOne(ctx, r.db, query, tag, id)
}

// UpdateAssignee sets the incident's assignee.
func (r *Repository) UpdateAssignee(ctx context.Context, id string, assignee string) (*domain.Incident, error) {
	query := `
		UPDATE incidents SET assignee = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + incidentColumns

	return r.returningOne(ctx, r.db, query, assignee, id)
}

// BeginTx starts a new database transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// UpdateStatusTx sets the incident's status inside the given
// transaction. When notes is non-nil the resolution fields are stamped
// with resolved_at = NOW(); otherwise they are cleared, keeping the
// resolution fields present exactly when the status is resolved or
// closed.
func (r *Repository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id string, status domain.IncidentStatus, notes, resolvedBy *string) (*domain.Incident, error) {
	if notes != nil {
		query := `
			UPDATE incidents
			SET status = $1, resolution_notes = $2, resolved_by = $3, resolved_at = NOW(), updated_at = NOW()
			WHERE id = $4
			RETURNING ` + incidentColumns
		return r.returningOne(ctx, tx, query, status, *notes, resolvedBy, id)
	}

	query := `
		UPDATE incidents
		SET status = $1, resolution_notes = NULL, resolved_by = NULL, resolved_at = NULL, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + incidentColumns
	return r.returningOne(ctx, tx, query, status, id)
}

// returningOne runs a single-row RETURNING statement and maps the empty
// result to ErrIncidentNotFound.
func (r *Repository) returningOne(ctx context.Context, q querier, query string, args ...interface{}) (*domain.Incident, error) {
	incident, err := scanIncident(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return incident, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Status,
		&incident.Severity,
		&incident.Tags,
		&incident.Comments,
		&incident.AlertIDs,
		&incident.OrganizationID,
		&incident.Assignee,
		&incident.AssignedTeam,
		&incident.Shift,
		&incident.ResolutionNotes,
		&incident.ResolvedBy,
		&incident.ResolvedAt,
		&incident.SimulatedPriority,
		&incident.PriorityLabel,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
