package domain

import (
	"encoding/json"
	"time"
)

// AlertStatus represents the state of a raw detected alert.
type AlertStatus string

// Alert statuses. Alerts have a lifecycle independent from incidents.
const (
	AlertStatusNew        AlertStatus = "new"
	AlertStatusInProgress AlertStatus = "in_progress"
	AlertStatusResolved   AlertStatus = "resolved"
	AlertStatusDismissed  AlertStatus = "dismissed"
)

// Alert is a raw, lower-level detected event. It may later be associated
// with an incident; the association stores the foreign id only and is not
// referentially enforced.
type Alert struct {
	ID             string          `json:"id"`
	Source         string          `json:"source"`
	Type           string          `json:"type"`
	Severity       Severity        `json:"severity"`
	Status         AlertStatus     `json:"status"`
	Description    *string         `json:"description"`
	DetectedAt     time.Time       `json:"detected_at"`
	OrganizationID string          `json:"organization_id"`
	RawData        json.RawMessage `json:"raw_data"`
	IncidentID     *string         `json:"incident_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsValid checks if the alert status is valid.
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusNew, AlertStatusInProgress, AlertStatusResolved, AlertStatusDismissed:
		return true
	}
	return false
}
