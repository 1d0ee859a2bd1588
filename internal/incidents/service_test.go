package incidents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opswatch/opswatch/internal/domain"
)

// mockTx implements just enough of pgx.Tx for the service's
// begin/commit/rollback flow.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *mockTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *mockTx) Rollback(_ context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

// mockRepository implements Repository for testing.
type mockRepository struct {
	incidents map[string]*domain.Incident
	nextID    int
	lastTx    *mockTx
}

func newMockRepository() *mockRepository {
	return &mockRepository{incidents: make(map[string]*domain.Incident)}
}

func (m *mockRepository) Create(_ context.Context, incident *domain.Incident) error {
	m.nextID++
	incident.ID = fmt.Sprintf("inc-%d", m.nextID)
	incident.CreatedAt = time.Now()
	incident.UpdatedAt = incident.CreatedAt
	m.incidents[incident.ID] = incident
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return incident, nil
}

func (m *mockRepository) List(_ context.Context, _ Filters) ([]*domain.Incident, error) {
	list := make([]*domain.Incident, 0, len(m.incidents))
	for _, incident := range m.incidents {
		list = append(list, incident)
	}
	return list, nil
}

func (m *mockRepository) UpdateTeamShift(_ context.Context, id string, team *string, shift *domain.Shift) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	if team != nil {
		incident.AssignedTeam = team
	}
	if shift != nil {
		incident.Shift = shift
	}
	return incident, nil
}

func (m *mockRepository) AppendComment(_ context.Context, id string, comment domain.Comment) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	incident.Comments = append(incident.Comments, comment)
	return incident, nil
}

func (m *mockRepository) AppendTag(_ context.Context, id string, tag string) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	if !containsTag(incident.Tags, tag) {
		incident.Tags = append(incident.Tags, tag)
	}
	return incident, nil
}

func (m *mockRepository) UpdateAssignee(_ context.Context, id string, assignee string) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	incident.Assignee = &assignee
	return incident, nil
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	m.lastTx = &mockTx{}
	return m.lastTx, nil
}

func (m *mockRepository) UpdateStatusTx(_ context.Context, _ pgx.Tx, id string, status domain.IncidentStatus, notes, resolvedBy *string) (*domain.Incident, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	incident.Status = status
	if notes != nil {
		now := time.Now()
		incident.ResolutionNotes = notes
		incident.ResolvedBy = resolvedBy
		incident.ResolvedAt = &now
	} else {
		incident.ResolutionNotes = nil
		incident.ResolvedBy = nil
		incident.ResolvedAt = nil
	}
	return incident, nil
}

// mockAuditor implements Auditor for testing.
type mockAuditor struct {
	entries []*domain.AuditLogEntry
}

func (m *mockAuditor) record(incidentID string, action domain.AuditAction, actor, details string) {
	if actor == "" {
		actor = domain.UnknownActor
	}
	m.entries = append(m.entries, &domain.AuditLogEntry{
		IncidentID: incidentID,
		Action:     action,
		Actor:      actor,
		Details:    details,
		CreatedAt:  time.Now(),
	})
}

func (m *mockAuditor) Append(_ context.Context, incidentID string, action domain.AuditAction, actor, details string) error {
	m.record(incidentID, action, actor, details)
	return nil
}

func (m *mockAuditor) AppendTx(_ context.Context, _ pgx.Tx, incidentID string, action domain.AuditAction, actor, details string) error {
	m.record(incidentID, action, actor, details)
	return nil
}

func (m *mockAuditor) Trail(_ context.Context, incidentID string) ([]*domain.AuditLogEntry, error) {
	trail := make([]*domain.AuditLogEntry, 0)
	for _, e := range m.entries {
		if e.IncidentID == incidentID {
			trail = append(trail, e)
		}
	}
	return trail, nil
}

// mockNotifier implements Notifier for testing.
type mockNotifier struct {
	assigned []string
	updated  int
}

func (m *mockNotifier) IncidentAssigned(_ context.Context, _ *domain.Incident, assignee string) {
	m.assigned = append(m.assigned, assignee)
}

func (m *mockNotifier) IncidentUpdated(_ context.Context, _ *domain.Incident) {
	m.updated++
}

func newTestService(t *testing.T) (*Service, *mockRepository, *mockAuditor, *mockNotifier) {
	t.Helper()

	repo := newMockRepository()
	auditor := &mockAuditor{}
	notifier := &mockNotifier{}
	return NewService(repo, auditor, notifier), repo, auditor, notifier
}

func createTestIncident(t *testing.T, svc *Service) *domain.Incident {
	t.Helper()

	incident, err := svc.Create(context.Background(), CreateIncidentInput{
		Title:          "Boiler",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	return incident
}

func TestService_Create(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Create(context.Background(), CreateIncidentInput{OrganizationID: "org-1"})
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("missing organization", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Create(context.Background(), CreateIncidentInput{Title: "Boiler"})
		assert.ErrorIs(t, err, ErrOrganizationRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		svc, _, _, notifier := newTestService(t)

		incident := createTestIncident(t, svc)

		assert.Equal(t, domain.IncidentStatusOpen, incident.Status)
		assert.Equal(t, domain.SeverityMedium, incident.Severity)
		assert.Empty(t, incident.Tags)
		assert.Empty(t, incident.Comments)
		assert.Empty(t, incident.AlertIDs)
		assert.Nil(t, incident.ResolutionNotes)
		assert.Equal(t, 1, notifier.updated)
	})

	t.Run("invalid severity", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Create(context.Background(), CreateIncidentInput{
			Title:          "Boiler",
			OrganizationID: "org-1",
			Severity:       "catastrophic",
		})
		assert.ErrorIs(t, err, ErrInvalidSeverity)
	})

	t.Run("duplicate tags collapse", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		incident, err := svc.Create(context.Background(), CreateIncidentInput{
			Title:          "Boiler",
			OrganizationID: "org-1",
			Tags:           []string{"network", "network", " network "},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"network"}, incident.Tags)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("resolved without notes fails and leaves status unchanged", func(t *testing.T) {
		svc, repo, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusResolved, "", "alice")
		assert.ErrorIs(t, err, ErrResolutionRequired)

		stored := repo.incidents[incident.ID]
		assert.Equal(t, domain.IncidentStatusOpen, stored.Status)
		assert.Empty(t, auditor.entries)
	})

	t.Run("resolved without actor fails", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusResolved, "fixed", "")
		assert.ErrorIs(t, err, ErrResolutionRequired)
	})

	t.Run("resolve stamps resolution fields and writes two audit entries", func(t *testing.T) {
		svc, repo, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		updated, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusResolved, "fixed", "alice")
		require.NoError(t, err)

		assert.Equal(t, domain.IncidentStatusResolved, updated.Status)
		require.NotNil(t, updated.ResolutionNotes)
		assert.Equal(t, "fixed", *updated.ResolutionNotes)
		require.NotNil(t, updated.ResolvedBy)
		assert.Equal(t, "alice", *updated.ResolvedBy)
		assert.NotNil(t, updated.ResolvedAt)

		require.Len(t, auditor.entries, 2)
		assert.Equal(t, domain.AuditActionStatusChange, auditor.entries[0].Action)
		assert.Equal(t, domain.AuditActionResolution, auditor.entries[1].Action)
		assert.Equal(t, "fixed", auditor.entries[1].Details)

		assert.True(t, repo.lastTx.committed)
	})

	t.Run("reopening clears resolution fields", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusClosed, "done", "alice")
		require.NoError(t, err)

		updated, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusOpen, "", "alice")
		require.NoError(t, err)

		assert.Equal(t, domain.IncidentStatusOpen, updated.Status)
		assert.Nil(t, updated.ResolutionNotes)
		assert.Nil(t, updated.ResolvedBy)
		assert.Nil(t, updated.ResolvedAt)

		// Two entries for the close, one for the reopen.
		assert.Len(t, auditor.entries, 3)
	})

	t.Run("plain transition writes one audit entry", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusTriaged, "", "bob")
		require.NoError(t, err)

		require.Len(t, auditor.entries, 1)
		assert.Equal(t, domain.AuditActionStatusChange, auditor.entries[0].Action)
		assert.Equal(t, "bob", auditor.entries[0].Actor)
	})

	t.Run("unknown incident", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.UpdateStatus(context.Background(), "missing", domain.IncidentStatusTriaged, "", "")
		assert.ErrorIs(t, err, ErrIncidentNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateStatus(context.Background(), incident.ID, "escalated", "", "")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_UpdateTeamAndShift(t *testing.T) {
	team := "SOC Tier 2"
	shift := domain.ShiftNight

	t.Run("neither field supplied", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateTeamAndShift(context.Background(), incident.ID, nil, nil, "alice")
		assert.ErrorIs(t, err, ErrNothingToUpdate)
	})

	t.Run("unknown team", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		bogus := "Tier 9"
		_, err := svc.UpdateTeamAndShift(context.Background(), incident.ID, &bogus, nil, "alice")
		assert.ErrorIs(t, err, ErrInvalidTeam)
	})

	t.Run("both fields audited when both change", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		updated, err := svc.UpdateTeamAndShift(context.Background(), incident.ID, &team, &shift, "alice")
		require.NoError(t, err)

		assert.Equal(t, team, *updated.AssignedTeam)
		assert.Equal(t, shift, *updated.Shift)

		require.Len(t, auditor.entries, 2)
		assert.Equal(t, domain.AuditActionTeamChange, auditor.entries[0].Action)
		assert.Equal(t, domain.AuditActionShiftChange, auditor.entries[1].Action)
	})

	t.Run("partial update audits only the supplied field", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateTeamAndShift(context.Background(), incident.ID, &team, nil, "alice")
		require.NoError(t, err)

		require.Len(t, auditor.entries, 1)
		assert.Equal(t, domain.AuditActionTeamChange, auditor.entries[0].Action)
	})

	t.Run("repeating the current value writes no audit entry", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.UpdateTeamAndShift(context.Background(), incident.ID, &team, nil, "alice")
		require.NoError(t, err)
		require.Len(t, auditor.entries, 1)

		_, err = svc.UpdateTeamAndShift(context.Background(), incident.ID, &team, nil, "alice")
		require.NoError(t, err)
		assert.Len(t, auditor.entries, 1)
	})
}

func TestService_AddComment(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.AddComment(context.Background(), incident.ID, "alice", "  ")
		assert.ErrorIs(t, err, ErrCommentRequired)
	})

	t.Run("comments keep call order", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		for i := 1; i <= 3; i++ {
			_, err := svc.AddComment(context.Background(), incident.ID, "alice", fmt.Sprintf("note %d", i))
			require.NoError(t, err)
		}

		updated, err := svc.Get(context.Background(), incident.ID)
		require.NoError(t, err)
		require.Len(t, updated.Comments, 3)
		for i, c := range updated.Comments {
			assert.Equal(t, fmt.Sprintf("note %d", i+1), c.Text)
			assert.Equal(t, "alice", c.Author)
		}

		require.Len(t, auditor.entries, 3)
		assert.Equal(t, domain.AuditActionComment, auditor.entries[0].Action)
		assert.Equal(t, "note 1", auditor.entries[0].Details)
	})

	t.Run("missing actor recorded as unknown", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		updated, err := svc.AddComment(context.Background(), incident.ID, "", "anonymous note")
		require.NoError(t, err)

		assert.Equal(t, domain.UnknownActor, updated.Comments[0].Author)
		assert.Equal(t, domain.UnknownActor, auditor.entries[0].Actor)
	})
}

func TestService_AddTag(t *testing.T) {
	t.Run("empty tag", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.AddTag(context.Background(), incident.ID, "   ")
		assert.ErrorIs(t, err, ErrTagRequired)
	})

	t.Run("adding the same tag twice is idempotent", func(t *testing.T) {
		svc, _, auditor, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.AddTag(context.Background(), incident.ID, "network")
		require.NoError(t, err)

		updated, err := svc.AddTag(context.Background(), incident.ID, "network")
		require.NoError(t, err)

		assert.Equal(t, []string{"network"}, updated.Tags)
		// Tag additions leave no audit trace.
		assert.Empty(t, auditor.entries)
	})

	t.Run("normalizes before comparing", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		// Same tag, composed and decomposed forms.
		_, err := svc.AddTag(context.Background(), incident.ID, "café")
		require.NoError(t, err)

		updated, err := svc.AddTag(context.Background(), incident.ID, "café")
		require.NoError(t, err)

		assert.Len(t, updated.Tags, 1)
	})
}

func TestService_Assign(t *testing.T) {
	t.Run("missing assignee", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		incident := createTestIncident(t, svc)

		_, err := svc.Assign(context.Background(), incident.ID, "", "alice")
		assert.ErrorIs(t, err, ErrAssigneeRequired)
	})

	t.Run("assigns and fans out", func(t *testing.T) {
		svc, _, auditor, notifier := newTestService(t)
		incident := createTestIncident(t, svc)

		updated, err := svc.Assign(context.Background(), incident.ID, "bob@example.com", "alice")
		require.NoError(t, err)

		require.NotNil(t, updated.Assignee)
		assert.Equal(t, "bob@example.com", *updated.Assignee)

		require.Len(t, auditor.entries, 1)
		assert.Equal(t, domain.AuditActionAssign, auditor.entries[0].Action)
		assert.Equal(t, "alice", auditor.entries[0].Actor)

		assert.Equal(t, []string{"bob@example.com"}, notifier.assigned)
	})
}

func TestService_Trail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	incident := createTestIncident(t, svc)

	trail, err := svc.Trail(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Empty(t, trail)

	_, err = svc.UpdateStatus(context.Background(), incident.ID, domain.IncidentStatusTriaged, "", "alice")
	require.NoError(t, err)
	_, err = svc.AddComment(context.Background(), incident.ID, "alice", "looking")
	require.NoError(t, err)

	trail, err = svc.Trail(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, domain.AuditActionStatusChange, trail[0].Action)
	assert.Equal(t, domain.AuditActionComment, trail[1].Action)
}
