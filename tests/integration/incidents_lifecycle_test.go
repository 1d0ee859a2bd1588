//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/opswatch/opswatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidents_Resolve_RequiresNotes(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Boiler overheating", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status": "resolved",
		"actor":  "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result errorEnvelope
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "resolution notes and resolver required", result.Error.Message)

	// The failed transition must leave no trace
	fetched := getIncident(t, client, incident.ID)
	assert.Equal(t, "open", fetched.Status)
	assert.Empty(t, getAuditTrail(t, client, incident.ID))
}

func TestIncidents_Resolve_RequiresNotes_CombinedBody(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Boiler overheating", testutil.RandomString("org"))

	// A rejected resolve must not let the team/shift part of the same
	// request through either.
	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"assigned_team": "SOC Tier 1",
		"shift":         "Night",
		"status":        "resolved",
		"actor":         "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result errorEnvelope
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "resolution notes and resolver required", result.Error.Message)

	fetched := getIncident(t, client, incident.ID)
	assert.Equal(t, "open", fetched.Status)
	assert.Nil(t, fetched.AssignedTeam)
	assert.Nil(t, fetched.Shift)
	assert.Empty(t, getAuditTrail(t, client, incident.ID))
}

func TestIncidents_Resolve_Flow(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Boiler overheating", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status":           "resolved",
		"resolution_notes": "fixed",
		"actor":            "alice",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result incidentEnvelope
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, "resolved", result.Data.Status)
	require.NotNil(t, result.Data.ResolutionNotes)
	assert.Equal(t, "fixed", *result.Data.ResolutionNotes)
	require.NotNil(t, result.Data.ResolvedBy)
	assert.Equal(t, "alice", *result.Data.ResolvedBy)
	assert.NotNil(t, result.Data.ResolvedAt)

	// Exactly two audit entries in append order
	trail := getAuditTrail(t, client, incident.ID)
	require.Len(t, trail, 2)
	assert.Equal(t, "status_change", trail[0].Action)
	assert.Equal(t, "status changed to resolved", trail[0].Details)
	assert.Equal(t, "alice", trail[0].Actor)
	assert.Equal(t, "resolution", trail[1].Action)
	assert.Equal(t, "fixed", trail[1].Details)
	assert.Equal(t, "alice", trail[1].Actor)
}

func TestIncidents_Reopen_ClearsResolution(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Flapping sensor", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status":           "resolved",
		"resolution_notes": "recalibrated",
		"actor":            "bob",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status": "in_progress",
		"actor":  "bob",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result incidentEnvelope
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, "in_progress", result.Data.Status)
	assert.Nil(t, result.Data.ResolutionNotes)
	assert.Nil(t, result.Data.ResolvedBy)
	assert.Nil(t, result.Data.ResolvedAt)

	trail := getAuditTrail(t, client, incident.ID)
	require.Len(t, trail, 3)
	assert.Equal(t, "status_change", trail[2].Action)
	assert.Equal(t, "status changed to in_progress", trail[2].Details)
}

func TestIncidents_Close_RequiresNotes(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Closing time", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status": "closed",
		"actor":  "carol",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status":           "closed",
		"resolution_notes": "duplicate of earlier incident",
		"actor":            "carol",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result incidentEnvelope
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "closed", result.Data.Status)
	require.NotNil(t, result.Data.ResolvedBy)
	assert.Equal(t, "carol", *result.Data.ResolvedBy)
}

func TestIncidents_PlainTransition_SingleAuditEntry(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Needs triage", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{
		"status": "triaged",
		"actor":  "dave",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	trail := getAuditTrail(t, client, incident.ID)
	require.Len(t, trail, 1)
	assert.Equal(t, "status_change", trail[0].Action)
	assert.Equal(t, "dave", trail[0].Actor)
}

func TestIncidents_Update_NothingToUpdate(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	incident := createTestIncident(t, client, "Empty patch", testutil.RandomString("org"))

	resp, err := client.PATCH("/api/v1/incidents/"+incident.ID, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestIncidents_Update_NotFound(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client)

	resp, err := client.PATCH("/api/v1/incidents/"+missingIncidentID, map[string]interface{}{
		"status": "triaged",
		"actor":  "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
