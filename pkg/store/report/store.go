package report

import (
	"context"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
)

// Store is the persistence contract every backend implements identically.
//
// Record lifecycle: a record is created pending and moves exactly once to
// completed (MarkCompleted) or failed (MarkFailed). There is no transition
// out of a terminal status; attempts return ErrConflict. Both Mark
// operations return ErrNotFound for an absent id, uniformly across
// backends.
type Store interface {
	// Create persists a new record and returns its generated id. The
	// record's ID and CreatedAt are assigned here; an empty Status defaults
	// to pending.
	Create(ctx context.Context, rec store.Report) (string, error)

	// MarkCompleted transitions a pending record to completed, attaching
	// the generated results and the run duration.
	MarkCompleted(ctx context.Context, id string, results []domain.GroupReport, durationMs int64) error

	// MarkFailed transitions a pending record to failed, attaching the
	// normalized error message and the run duration.
	MarkFailed(ctx context.Context, id string, message string, durationMs int64) error

	// Get returns the record, or nil (not an error) when the id is absent.
	Get(ctx context.Context, id string) (*store.Report, error)

	// List returns records ordered newest-created-first. Total counts all
	// records matching the status filter before Limit and Offset apply.
	List(ctx context.Context, filter store.ListFilter) (store.ReportPage, error)

	// Delete removes the record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}
