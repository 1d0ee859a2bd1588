package incidents

import "errors"

// Repository errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
)

// Validation errors.
var (
	ErrTitleRequired        = errors.New("title is required")
	ErrOrganizationRequired = errors.New("organization_id is required")
	ErrResolutionRequired   = errors.New("resolution notes and resolver required")
	ErrCommentRequired      = errors.New("comment text is required")
	ErrTagRequired          = errors.New("tag is required")
	ErrAssigneeRequired     = errors.New("assignee is required")
	ErrNothingToUpdate      = errors.New("at least one of assigned_team or shift is required")
	ErrInvalidStatus        = errors.New("invalid incident status")
	ErrInvalidSeverity      = errors.New("invalid severity")
	ErrInvalidTeam          = errors.New("unknown team")
	ErrInvalidShift         = errors.New("invalid shift")
)
