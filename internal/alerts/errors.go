package alerts

import "errors"

// Repository errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Validation errors.
var (
	ErrSourceRequired       = errors.New("source is required")
	ErrTypeRequired         = errors.New("type is required")
	ErrOrganizationRequired = errors.New("organization_id is required")
	ErrInvalidSeverity      = errors.New("invalid severity")
	ErrInvalidStatus        = errors.New("invalid alert status")
)
