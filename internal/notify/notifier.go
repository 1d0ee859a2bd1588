// Package notify fans incident state changes out to the assignee's email
// and to connected real-time subscribers.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opswatch/opswatch/internal/domain"
)

// EmailSender delivers a single email, best-effort.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Broadcaster publishes an event to all connected real-time subscribers.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// UserDirectory resolves a user identifier to an email address.
type UserDirectory interface {
	LookupEmail(ctx context.Context, identifier string) (string, error)
}

// Notifier implements the notification fan-out. Every failure on this
// path is logged and swallowed; notification never fails the mutation
// that triggered it.
type Notifier struct {
	email     EmailSender
	hub       Broadcaster
	directory UserDirectory
}

// NewNotifier creates a new notifier.
func NewNotifier(email EmailSender, hub Broadcaster, directory UserDirectory) *Notifier {
	return &Notifier{
		email:     email,
		hub:       hub,
		directory: directory,
	}
}

// assignedPayload is the incident-assigned broadcast body.
type assignedPayload struct {
	Assignee string           `json:"assignee"`
	Incident *domain.Incident `json:"incident"`
}

// IncidentAssigned notifies the new assignee by email and broadcasts the
// assignment to all connected subscribers. The recipient is the assignee
// string itself when it is already email-shaped, otherwise a directory
// lookup; a failed lookup skips the email without affecting the
// assignment.
func (n *Notifier) IncidentAssigned(ctx context.Context, incident *domain.Incident, assignee string) {
	start := time.Now()

	to, err := n.resolveRecipient(ctx, assignee)
	if err != nil {
		slog.Warn("skipping assignment email, recipient not resolved",
			"incident_id", incident.ID,
			"assignee", assignee,
			"error", err,
		)
		recordEmail("skipped")
	} else {
		subject := fmt.Sprintf("Incident assigned: %s", incident.Title)
		body := fmt.Sprintf("You have been assigned incident %q.\n\n%s", incident.Title, incident.Description)

		if err := n.email.Send(ctx, to, subject, body); err != nil {
			slog.Error("failed to send assignment email",
				"incident_id", incident.ID,
				"error", err,
			)
			recordEmail("failed")
		} else {
			recordEmail("sent")
			recordEmailDuration(time.Since(start))
		}
	}

	n.hub.Broadcast("incident-assigned", assignedPayload{
		Assignee: assignee,
		Incident: incident,
	})
}

// IncidentUpdated broadcasts the full incident record to all connected
// subscribers. Used on creation and simulation as well as updates.
func (n *Notifier) IncidentUpdated(_ context.Context, incident *domain.Incident) {
	n.hub.Broadcast("incident-updated", incident)
}

// AlertUpdated broadcasts an alert record to all connected subscribers.
func (n *Notifier) AlertUpdated(_ context.Context, alert *domain.Alert) {
	n.hub.Broadcast("alert-updated", alert)
}

// resolveRecipient returns the assignee directly when email-shaped,
// otherwise resolves it through the user directory.
func (n *Notifier) resolveRecipient(ctx context.Context, assignee string) (string, error) {
	if strings.Contains(assignee, "@") {
		return assignee, nil
	}
	return n.directory.LookupEmail(ctx, assignee)
}
