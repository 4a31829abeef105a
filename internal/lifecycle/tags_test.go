package lifecycle_test

import (
	"testing"

	"nosybot/internal/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabels(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    []string
	}{
		{
			name:        "two labels",
			description: "Buy milk #errand #home",
			expected:    []string{"errand", "home"},
		},
		{
			name:        "case folded",
			description: "Review PR #Work #URGENT",
			expected:    []string{"work", "urgent"},
		},
		{
			name:        "duplicates collapse",
			description: "Call mom #family #family",
			expected:    []string{"family"},
		},
		{
			name:        "no labels",
			description: "Just a plain task",
			expected:    nil,
		},
		{
			name:        "bare hash ignored",
			description: "Weird # symbol",
			expected:    nil,
		},
		{
			name:        "label mid-word",
			description: "Ticket ABC#123",
			expected:    []string{"123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lifecycle.ExtractLabels(tt.description))
		})
	}
}
