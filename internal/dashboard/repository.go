// Package dashboard serves aggregate incident and alert counts.
package dashboard

import "context"

// Summary holds the dashboard aggregates.
type Summary struct {
	IncidentsByStatus   map[string]int `json:"incidents_by_status"`
	IncidentsBySeverity map[string]int `json:"incidents_by_severity"`
	AlertsByStatus      map[string]int `json:"alerts_by_status"`
	TotalIncidents      int            `json:"total_incidents"`
	TotalAlerts         int            `json:"total_alerts"`
}

// Repository defines the interface for dashboard aggregation queries.
type Repository interface {
	Summary(ctx context.Context, organizationID string) (*Summary, error)
}
