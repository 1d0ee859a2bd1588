// Package priority maps raw event attributes to a coarse priority score.
package priority

// Attributes are the event fields the classifier inspects. Zero values
// are treated as absent.
type Attributes struct {
	Priority    string  `json:"priority,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	Temperature float64 `json:"temp,omitempty"`
}

// Classification is the classifier output.
type Classification struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// Classify maps event attributes to a priority score and label. Rules
// are evaluated in order, first match wins:
//
//	critical priority, temp above 900 or high severity -> 95 Critical
//	high priority                                      -> 80 High
//	low priority                                       -> 20 Low
//	anything else                                      -> 50 Medium
func Classify(attrs Attributes) Classification {
	switch {
	case attrs.Priority == "critical" || attrs.Temperature > 900 || attrs.Severity == "high":
		return Classification{Score: 95, Label: "Critical"}
	case attrs.Priority == "high":
		return Classification{Score: 80, Label: "High"}
	case attrs.Priority == "low":
		return Classification{Score: 20, Label: "Low"}
	default:
		return Classification{Score: 50, Label: "Medium"}
	}
}
