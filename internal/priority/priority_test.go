package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		attrs         Attributes
		expectedScore int
		expectedLabel string
	}{
		{
			name:          "critical priority",
			attrs:         Attributes{Priority: "critical"},
			expectedScore: 95,
			expectedLabel: "Critical",
		},
		{
			name:          "temperature above threshold",
			attrs:         Attributes{Temperature: 950},
			expectedScore: 95,
			expectedLabel: "Critical",
		},
		{
			name:          "high severity",
			attrs:         Attributes{Severity: "high"},
			expectedScore: 95,
			expectedLabel: "Critical",
		},
		{
			name:          "high priority",
			attrs:         Attributes{Priority: "high"},
			expectedScore: 80,
			expectedLabel: "High",
		},
		{
			name:          "low priority",
			attrs:         Attributes{Priority: "low"},
			expectedScore: 20,
			expectedLabel: "Low",
		},
		{
			name:          "empty attributes default to medium",
			attrs:         Attributes{},
			expectedScore: 50,
			expectedLabel: "Medium",
		},
		{
			name:          "unrecognized priority defaults to medium",
			attrs:         Attributes{Priority: "urgent"},
			expectedScore: 50,
			expectedLabel: "Medium",
		},
		{
			name:          "critical rule wins over high priority",
			attrs:         Attributes{Priority: "high", Temperature: 1200},
			expectedScore: 95,
			expectedLabel: "Critical",
		},
		{
			name:          "temperature at threshold is not critical",
			attrs:         Attributes{Temperature: 900},
			expectedScore: 50,
			expectedLabel: "Medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.attrs)
			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, tt.expectedLabel, result.Label)
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	attrs := Attributes{Priority: "low", Severity: "medium"}

	first := Classify(attrs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(attrs))
	}
}
