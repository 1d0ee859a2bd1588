package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/opswatch/opswatch/internal/domain"
)

// Recorder appends immutable audit entries for incidents and reads them
// back in chronological order.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Append writes one audit entry. The actor defaults to "unknown" when
// empty. Fails only on storage unavailability.
func (r *Recorder) Append(ctx context.Context, incidentID string, action domain.AuditAction, actor, details string) error {
	if actor == "" {
		actor = domain.UnknownActor
	}

	entry := &domain.AuditLogEntry{
		IncidentID: incidentID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// AppendTx writes one audit entry inside an existing transaction.
func (r *Recorder) AppendTx(ctx context.Context, tx pgx.Tx, incidentID string, action domain.AuditAction, actor, details string) error {
	if actor == "" {
		actor = domain.UnknownActor
	}

	entry := &domain.AuditLogEntry{
		IncidentID: incidentID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	}

	if err := r.repo.AppendTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Trail returns all entries for an incident ascending by creation time.
// Returns an empty slice when the incident has no entries.
func (r *Recorder) Trail(ctx context.Context, incidentID string) ([]*domain.AuditLogEntry, error) {
	entries, err := r.repo.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list audit trail: %w", err)
	}
	return entries, nil
}
