package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

func TestReporterHandle(t *testing.T) {
	tests := []struct {
		name     string
		groups   []domain.GroupReport
		expected []string
	}{
		{
			name: "grouped results print headers",
			groups: []domain.GroupReport{
				{Group: "backend", Report: "All quiet."},
				{Group: "frontend", Report: "Two regressions fixed."},
			},
			expected: []string{
				"=== backend ===",
				"All quiet.",
				"=== frontend ===",
				"Two regressions fixed.",
			},
		},
		{
			name:     "ungrouped result prints report only",
			groups:   []domain.GroupReport{{Report: "A calm week overall."}},
			expected: []string{"A calm week overall."},
		},
		{
			name:     "empty result",
			groups:   nil,
			expected: []string{"The report came back empty."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			reporter := NewReporter(&out)

			require.NoError(t, reporter.Handle(tt.groups))
			for _, want := range tt.expected {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestReporterHandleOmitsHeaderForEmptyGroup(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)

	require.NoError(t, reporter.Handle([]domain.GroupReport{{Report: "All quiet."}}))
	assert.NotContains(t, out.String(), "===")
}
