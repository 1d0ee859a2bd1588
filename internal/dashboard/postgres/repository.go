// Package postgres provides PostgreSQL implementation of dashboard queries.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opswatch/opswatch/internal/dashboard"
)

// Repository implements dashboard.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Summary aggregates incident and alert counts, optionally scoped to
// one organization.
func (r *Repository) Summary(ctx context.Context, organizationID string) (*dashboard.Summary, error) {
	summary := &dashboard.Summary{
		IncidentsByStatus:   make(map[string]int),
		IncidentsBySeverity: make(map[string]int),
		AlertsByStatus:      make(map[string]int),
	}

	if err := r.countGroups(ctx, "incidents", "status", organizationID, summary.IncidentsByStatus); err != nil {
		return nil, err
	}
	if err := r.countGroups(ctx, "incidents", "severity", organizationID, summary.IncidentsBySeverity); err != nil {
		return nil, err
	}
	if err := r.countGroups(ctx, "alerts", "status", organizationID, summary.AlertsByStatus); err != nil {
		return nil, err
	}

	for _, n := range summary.IncidentsByStatus {
		summary.TotalIncidents += n
	}
	for _, n := range summary.AlertsByStatus {
		summary.TotalAlerts += n
	}

	return summary, nil
}

// countGroups fills counts with a GROUP BY over one column. The table
// and column names are fixed call sites, never caller input.
func (r *Repository) countGroups(ctx context.Context, table, column, organizationID string, counts map[string]int) error {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s", column, table)
	args := []interface{}{}

	if organizationID != "" {
		query += " WHERE organization_id = $1"
		args = append(args, organizationID)
	}
	query += fmt.Sprintf(" GROUP BY %s", column)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("count %s by %s: %w", table, column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", table, err)
		}
		counts[key] = count
	}

	return rows.Err()
}
