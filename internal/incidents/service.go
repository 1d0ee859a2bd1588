package incidents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/opswatch/opswatch/internal/domain"
)

// Auditor records accepted mutations in the append-only audit trail.
type Auditor interface {
	Append(ctx context.Context, incidentID string, action domain.AuditAction, actor, details string) error
	AppendTx(ctx context.Context, tx pgx.Tx, incidentID string, action domain.AuditAction, actor, details string) error
	Trail(ctx context.Context, incidentID string) ([]*domain.AuditLogEntry, error)
}

// Notifier fans accepted mutations out to email and real-time
// subscribers. All notifier calls are best-effort.
type Notifier interface {
	IncidentAssigned(ctx context.Context, incident *domain.Incident, assignee string)
	IncidentUpdated(ctx context.Context, incident *domain.Incident)
}

// Service implements incident business logic.
type Service struct {
	repo     Repository
	auditor  Auditor
	notifier Notifier
}

// NewService creates a new incident service.
func NewService(repo Repository, auditor Auditor, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		auditor:  auditor,
		notifier: notifier,
	}
}

// CreateIncidentInput holds data for creating an incident.
type CreateIncidentInput struct {
	Title          string
	Description    string
	Status         domain.IncidentStatus
	Severity       domain.Severity
	Tags           []string
	OrganizationID string
	Assignee       *string
	AssignedTeam   *string
	Shift          *domain.Shift

	// Set only by the simulation path.
	SimulatedPriority *int
	PriorityLabel     *string
}

// Create inserts a new incident. Status defaults to open and severity to
// medium; tags, comments and alert associations start empty.
func (s *Service) Create(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.OrganizationID == "" {
		return nil, ErrOrganizationRequired
	}

	if input.Status == "" {
		input.Status = domain.IncidentStatusOpen
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Severity == "" {
		input.Severity = domain.SeverityMedium
	}
	if !input.Severity.IsValid() {
		return nil, ErrInvalidSeverity
	}
	if input.AssignedTeam != nil && !domain.IsValidTeam(*input.AssignedTeam) {
		return nil, ErrInvalidTeam
	}
	if input.Shift != nil && !input.Shift.IsValid() {
		return nil, ErrInvalidShift
	}

	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		if t := normalizeTag(tag); t != "" && !containsTag(tags, t) {
			tags = append(tags, t)
		}
	}

	incident := &domain.Incident{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Severity:       input.Severity,
		Tags:           tags,
		Comments:       make([]domain.Comment, 0),
		AlertIDs:       make([]string, 0),
		OrganizationID: input.OrganizationID,
		Assignee:       input.Assignee,
		AssignedTeam:   input.AssignedTeam,
		Shift:          input.Shift,

		SimulatedPriority: input.SimulatedPriority,
		PriorityLabel:     input.PriorityLabel,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	recordIncidentCreated(string(incident.Severity))

	s.notifier.IncidentUpdated(ctx, incident)
	return incident, nil
}

// Get retrieves an incident by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves incidents with optional filters, newest first.
func (s *Service) List(ctx context.Context, filters Filters) ([]*domain.Incident, error) {
	return s.repo.List(ctx, filters)
}

// UpdateStatus moves an incident to a new status. Any status is
// reachable from any other; the only gate is that resolved and closed
// require non-empty resolution notes and a resolver, which also stamp
// resolved_by and resolved_at. Moving to any other status clears the
// resolution fields. The status write and its audit entries commit in
// one transaction.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus, notes, actor string) (*domain.Incident, error) {
	if err := ValidateStatusChange(status, notes, actor); err != nil {
		return nil, err
	}

	var notesPtr, resolverPtr *string
	if status.RequiresResolution() {
		notesPtr = &notes
		resolverPtr = &actor
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	incident, err := s.repo.UpdateStatusTx(ctx, tx, id, status, notesPtr, resolverPtr)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	if err := s.auditor.AppendTx(ctx, tx, id, domain.AuditActionStatusChange, actor, fmt.Sprintf("status changed to %s", status)); err != nil {
		return nil, err
	}
	if status.RequiresResolution() {
		if err := s.auditor.AppendTx(ctx, tx, id, domain.AuditActionResolution, actor, notes); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	recordStatusChange(string(status))

	s.notifier.IncidentUpdated(ctx, incident)
	return incident, nil
}

// ValidateStatusChange checks a requested status transition without
// touching storage. Callers that combine a status change with other
// mutations in one request run it first so a rejected transition
// leaves nothing modified.
func ValidateStatusChange(status domain.IncidentStatus, notes, actor string) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if status.RequiresResolution() && (strings.TrimSpace(notes) == "" || strings.TrimSpace(actor) == "") {
		return ErrResolutionRequired
	}
	return nil
}

// UpdateTeamAndShift updates whichever of team and shift is supplied.
// Audit entries are written only for fields whose value actually
// changed; a write that repeats the current value leaves no trace.
func (s *Service) UpdateTeamAndShift(ctx context.Context, id string, team *string, shift *domain.Shift, actor string) (*domain.Incident, error) {
	if team == nil && shift == nil {
		return nil, ErrNothingToUpdate
	}
	if team != nil && !domain.IsValidTeam(*team) {
		return nil, ErrInvalidTeam
	}
	if shift != nil && !shift.IsValid() {
		return nil, ErrInvalidShift
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incident: %w", err)
	}

	teamChanged := team != nil && (current.AssignedTeam == nil || *current.AssignedTeam != *team)
	shiftChanged := shift != nil && (current.Shift == nil || *current.Shift != *shift)

	incident, err := s.repo.UpdateTeamShift(ctx, id, team, shift)
	if err != nil {
		return nil, fmt.Errorf("update team/shift: %w", err)
	}

	if teamChanged {
		if err := s.auditor.Append(ctx, id, domain.AuditActionTeamChange, actor, fmt.Sprintf("assigned team changed to %s", *team)); err != nil {
			return nil, err
		}
	}
	if shiftChanged {
		if err := s.auditor.Append(ctx, id, domain.AuditActionShiftChange, actor, fmt.Sprintf("shift changed to %s", *shift)); err != nil {
			return nil, err
		}
	}

	s.notifier.IncidentUpdated(ctx, incident)
	return incident, nil
}

// AddComment appends a comment to the incident's comment sequence.
// Comments are never edited, deleted or reordered.
func (s *Service) AddComment(ctx context.Context, id, actor, text string) (*domain.Incident, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}
	if actor == "" {
		actor = domain.UnknownActor
	}

	incident, err := s.repo.AppendComment(ctx, id, domain.Comment{
		Author:    actor,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}

	if err := s.auditor.Append(ctx, id, domain.AuditActionComment, actor, text); err != nil {
		return nil, err
	}

	s.notifier.IncidentUpdated(ctx, incident)
	return incident, nil
}

// AddTag inserts a tag into the incident's tag set. Tags are normalized
// to NFC before comparison; adding an existing tag is a no-op. Tag
// additions do not produce audit entries.
func (s *Service) AddTag(ctx context.Context, id, tag string) (*domain.Incident, error) {
	tag = normalizeTag(tag)
	if tag == "" {
		return nil, ErrTagRequired
	}

	incident, err := s.repo.AppendTag(ctx, id, tag)
	if err != nil {
		return nil, fmt.Errorf("append tag: %w", err)
	}

	s.notifier.IncidentUpdated(ctx, incident)
	return incident, nil
}

// Assign sets the incident's assignee and triggers the notification
// fan-out. The stored assignee is the caller-supplied value; email
// resolution happens only on the notification path and its failure
// never fails the assignment.
func (s *Service) Assign(ctx context.Context, id, assignee, actor string) (*domain.Incident, error) {
	if strings.TrimSpace(assignee) == "" {
		return nil, ErrAssigneeRequired
	}

	incident, err := s.repo.UpdateAssignee(ctx, id, assignee)
	if err != nil {
		return nil, fmt.Errorf("update assignee: %w", err)
	}

	if err := s.auditor.Append(ctx, id, domain.AuditActionAssign, actor, fmt.Sprintf("assigned to %s", assignee)); err != nil {
		return nil, err
	}

	s.notifier.IncidentAssigned(ctx, incident, assignee)
	return incident, nil
}

// Trail returns the incident's audit trail ascending by creation time.
func (s *Service) Trail(ctx context.Context, id string) ([]*domain.AuditLogEntry, error) {
	return s.auditor.Trail(ctx, id)
}

func normalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
