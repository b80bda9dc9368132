package store

import (
	"fmt"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

func (s ReportStatus) Terminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed
}

func ParseReportStatus(value string) (ReportStatus, error) {
	switch s := ReportStatus(value); s {
	case ReportStatusPending, ReportStatusCompleted, ReportStatusFailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown report status: %s", value)
	}
}

// Report is the persisted envelope around one generation run. Response is
// set only for completed runs, Error only for failed ones. DurationMs covers
// the span from record creation to the terminal transition.
type Report struct {
	ID          string
	Status      ReportStatus
	Request     domain.ReportRequest
	Response    []domain.GroupReport
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
	DurationMs  *int64
}

// ListFilter narrows and pages List results. A zero Limit means no limit.
type ListFilter struct {
	Status ReportStatus
	Limit  int
	Offset int
}

// ReportPage is one List result: Total counts all records matching the
// status filter before Limit and Offset are applied.
type ReportPage struct {
	Total   int
	Reports []Report
}
