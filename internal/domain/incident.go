package domain

import "time"

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

// Incident statuses. Any status may be set from any other; resolved and
// closed incidents can be reopened by moving back to an earlier status.
const (
	IncidentStatusOpen       IncidentStatus = "open"
	IncidentStatusTriaged    IncidentStatus = "triaged"
	IncidentStatusInProgress IncidentStatus = "in_progress"
	IncidentStatusResolved   IncidentStatus = "resolved"
	IncidentStatusClosed     IncidentStatus = "closed"
)

// Severity represents the severity level of an incident or alert.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Shift represents an on-call shift.
type Shift string

// Shifts.
const (
	ShiftDay   Shift = "Day"
	ShiftNight Shift = "Night"
	ShiftSwing Shift = "Swing"
)

// Teams is the fixed catalog of assignable teams.
var Teams = []string{
	"SOC Tier 1",
	"SOC Tier 2",
	"Network Operations",
	"Threat Intel",
	"Forensics",
}

// Comment is a single append-only incident comment. Comments are never
// edited or deleted and keep insertion order.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Incident represents a tracked operational or security event.
//
// Invariant: ResolutionNotes, ResolvedBy and ResolvedAt are all non-nil
// if and only if Status is resolved or closed.
type Incident struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Status            IncidentStatus `json:"status"`
	Severity          Severity       `json:"severity"`
	Tags              []string       `json:"tags"`
	Comments          []Comment      `json:"comments"`
	AlertIDs          []string       `json:"alerts"`
	OrganizationID    string         `json:"organization_id"`
	Assignee          *string        `json:"assignee"`
	AssignedTeam      *string        `json:"assigned_team"`
	Shift             *Shift         `json:"shift"`
	ResolutionNotes   *string        `json:"resolution_notes"`
	ResolvedBy        *string        `json:"resolved_by"`
	ResolvedAt        *time.Time     `json:"resolved_at"`
	SimulatedPriority *int           `json:"simulated_priority,omitempty"`
	PriorityLabel     *string        `json:"priority_label,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// IsValid checks if the incident status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusTriaged, IncidentStatusInProgress,
		IncidentStatusResolved, IncidentStatusClosed:
		return true
	}
	return false
}

// RequiresResolution reports whether the status carries resolution fields.
func (s IncidentStatus) RequiresResolution() bool {
	return s == IncidentStatusResolved || s == IncidentStatusClosed
}

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// IsValid checks if the shift is valid.
func (s Shift) IsValid() bool {
	return s == ShiftDay || s == ShiftNight || s == ShiftSwing
}

// IsValidTeam checks team membership in the fixed catalog.
func IsValidTeam(team string) bool {
	for _, t := range Teams {
		if t == team {
			return true
		}
	}
	return false
}
