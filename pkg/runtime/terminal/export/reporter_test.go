package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
)

func TestReporterHandle(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)

	duration := int64(1200)
	page := store.ReportPage{
		Total: 5,
		Reports: []store.Report{
			{
				ID:     "7c9f4d0a-93bb-4a21-9d30-6c2f6f3f1a11",
				Status: store.ReportStatusCompleted,
				Request: domain.ReportRequest{
					From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
					To:   time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
				},
				CreatedAt:  time.Date(2024, 5, 7, 9, 30, 0, 0, time.UTC),
				DurationMs: &duration,
			},
			{
				ID:     "e2a7c8b1-11f2-4f4e-8a3c-2b9d8f7e6d52",
				Status: store.ReportStatusPending,
				Request: domain.ReportRequest{
					From: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
					To:   time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
				},
				CreatedAt: time.Date(2024, 5, 14, 18, 0, 0, 0, time.UTC),
			},
		},
	}

	require.NoError(t, reporter.Handle(page))
	rendered := out.String()

	assert.Contains(t, rendered, "Runs: 2 of 5")
	assert.Contains(t, rendered, "ID")
	assert.Contains(t, rendered, "Status")
	assert.Contains(t, rendered, "7c9f4d0a-93bb-4a21-9d30-6c2f6f3f1a11")
	assert.Contains(t, rendered, "completed")
	assert.Contains(t, rendered, "2024-05-07 09:30")
	assert.Contains(t, rendered, "1.2s")
	assert.Contains(t, rendered, "2024-05-01 to 2024-05-07")
}

func TestReporterHandleMissingDuration(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)

	page := store.ReportPage{
		Total: 1,
		Reports: []store.Report{
			{
				ID:     "e2a7c8b1-11f2-4f4e-8a3c-2b9d8f7e6d52",
				Status: store.ReportStatusPending,
				Request: domain.ReportRequest{
					From: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
					To:   time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
				},
				CreatedAt: time.Date(2024, 5, 14, 18, 0, 0, 0, time.UTC),
			},
		},
	}

	require.NoError(t, reporter.Handle(page))
	assert.Contains(t, out.String(), "pending")
}

func TestReporterHandleEmptyPage(t *testing.T) {
	var out bytes.Buffer
	reporter := NewReporter(&out)

	require.NoError(t, reporter.Handle(store.ReportPage{Reports: []store.Report{}}))
	assert.Contains(t, out.String(), "Runs: 0 of 0")
}
