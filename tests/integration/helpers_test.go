//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/opswatch/opswatch/internal/testutil"
	"github.com/stretchr/testify/require"
)

// incidentPayload mirrors the incident JSON shape returned by the API.
type incidentPayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Severity    string   `json:"severity"`
	Tags        []string `json:"tags"`
	Comments    []struct {
		Author    string    `json:"author"`
		Text      string    `json:"text"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"comments"`
	OrganizationID    string     `json:"organization_id"`
	Assignee          *string    `json:"assignee"`
	AssignedTeam      *string    `json:"assigned_team"`
	Shift             *string    `json:"shift"`
	ResolutionNotes   *string    `json:"resolution_notes"`
	ResolvedBy        *string    `json:"resolved_by"`
	ResolvedAt        *time.Time `json:"resolved_at"`
	SimulatedPriority *int       `json:"simulated_priority"`
	PriorityLabel     *string    `json:"priority_label"`
}

type incidentEnvelope struct {
	Data incidentPayload `json:"data"`
}

type auditEntry struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incident_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

type alertPayload struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Type           string    `json:"type"`
	Severity       string    `json:"severity"`
	Status         string    `json:"status"`
	Description    *string   `json:"description"`
	DetectedAt     time.Time `json:"detected_at"`
	OrganizationID string    `json:"organization_id"`
	IncidentID     *string   `json:"incident_id"`
}

type alertEnvelope struct {
	Data alertPayload `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// registerAndLogin creates a fresh user and authenticates the client as
// that user. Returns the registered email.
func registerAndLogin(t *testing.T, client *testutil.Client) string {
	t.Helper()

	email := testutil.RandomEmail("user")
	password := "password123"

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, testutil.ReadBody(t, resp))

	client.LoginAs(t, email, password)
	return email
}

type incidentOption func(map[string]interface{})

func withSeverity(severity string) incidentOption {
	return func(m map[string]interface{}) {
		m["severity"] = severity
	}
}

func withTags(tags ...string) incidentOption {
	return func(m map[string]interface{}) {
		m["tags"] = tags
	}
}

func withStatus(status string) incidentOption {
	return func(m map[string]interface{}) {
		m["status"] = status
	}
}

// createTestIncident creates an incident and returns its payload.
func createTestIncident(t *testing.T, client *testutil.Client, title, orgID string, opts ...incidentOption) incidentPayload {
	t.Helper()

	payload := map[string]interface{}{
		"title":           title,
		"organization_id": orgID,
	}
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.POST("/api/v1/incidents", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, testutil.ReadBody(t, resp))

	var result incidentEnvelope
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)
	return result.Data
}

// getIncident fetches an incident by id.
func getIncident(t *testing.T, client *testutil.Client, id string) incidentPayload {
	t.Helper()

	resp, err := client.GET("/api/v1/incidents/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result incidentEnvelope
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// getAuditTrail fetches the audit trail for an incident.
func getAuditTrail(t *testing.T, client *testutil.Client, id string) []auditEntry {
	t.Helper()

	resp, err := client.GET("/api/v1/incidents/" + id + "/audit")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []auditEntry `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// missingIncidentID is a valid UUID that never exists in the database.
// The incidents table uses a uuid primary key, so lookups with
// non-UUID ids fail at the cast instead of returning not-found.
const missingIncidentID = "00000000-0000-0000-0000-000000000000"
