package domain

import "time"

// AuditAction represents the kind of mutation recorded in the audit trail.
type AuditAction string

// Audit actions.
const (
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionTeamChange   AuditAction = "team_change"
	AuditActionShiftChange  AuditAction = "shift_change"
	AuditActionComment      AuditAction = "comment"
	AuditActionAssign       AuditAction = "assign"
	AuditActionResolution   AuditAction = "resolution"
)

// UnknownActor is recorded when a mutation carries no actor identity.
const UnknownActor = "unknown"

// AuditLogEntry is one immutable record of an accepted incident mutation.
// Entries are written exactly once and never updated, deleted or reordered.
type AuditLogEntry struct {
	ID         string      `json:"id"`
	IncidentID string      `json:"incident_id"`
	Action     AuditAction `json:"action"`
	Actor      string      `json:"actor"`
	Details    string      `json:"details"`
	CreatedAt  time.Time   `json:"created_at"`
}
