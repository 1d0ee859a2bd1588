// Package simulation injects synthetic incidents, either one-shot via
// the API or on a recurring demo-mode timer.
package simulation

import (
	"github.com/opswatch/opswatch/internal/domain"
	"github.com/opswatch/opswatch/internal/priority"
)

// Template is one entry of the fixed synthetic incident catalog. The
// catalog is immutable at runtime; attributes feed the priority
// classifier.
type Template struct {
	Type        string
	Title       string
	Description string
	Severity    domain.Severity
	Attributes  priority.Attributes
}

// Catalog is the fixed set of synthetic incident templates.
var Catalog = []Template{
	{
		Type:        "temperature_spike",
		Title:       "Server room temperature spike",
		Description: "Sensor rack-04 reports sustained temperature above threshold",
		Severity:    domain.SeverityCritical,
		Attributes:  priority.Attributes{Temperature: 950},
	},
	{
		Type:        "unauthorized_access",
		Title:       "Unauthorized access attempt",
		Description: "Repeated failed logins for privileged account svc-backup",
		Severity:    domain.SeverityHigh,
		Attributes:  priority.Attributes{Priority: "high"},
	},
	{
		Type:        "malware_detection",
		Title:       "Malware detected on workstation",
		Description: "Endpoint agent quarantined suspicious binary on WS-1138",
		Severity:    domain.SeverityHigh,
		Attributes:  priority.Attributes{Severity: "high"},
	},
	{
		Type:        "network_anomaly",
		Title:       "Anomalous outbound traffic",
		Description: "Egress volume from VLAN 12 exceeds weekly baseline",
		Severity:    domain.SeverityMedium,
		Attributes:  priority.Attributes{},
	},
	{
		Type:        "phishing_attempt",
		Title:       "Phishing email reported",
		Description: "User-reported phishing message with credential harvesting link",
		Severity:    domain.SeverityLow,
		Attributes:  priority.Attributes{Priority: "low"},
	},
}

// TemplateByType returns the catalog entry for the given type name.
func TemplateByType(name string) (Template, bool) {
	for _, t := range Catalog {
		if t.Type == name {
			return t, true
		}
	}
	return Template{}, false
}
