package generator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/services/report"
	reportstore "github.com/de-tools/report-forge/pkg/store/report"
)

// Callbacks forward run outcomes to UI-layer collaborators. Both are
// optional and invoked synchronously, after the record (if any) reached its
// terminal status.
type Callbacks struct {
	OnSuccess func(id string, results []domain.GroupReport)
	OnError   func(message string)
}

// Run is the outcome of one generation. ID is set whenever a record was
// created, including for failed runs, so callers can look the record up.
type Run struct {
	ID         string
	Results    []domain.GroupReport
	DurationMs int64
}

type Generator interface {
	// IsGenerating reports whether a run is currently in flight. It is
	// advisory only; concurrent runs are not blocked here.
	IsGenerating() bool
	Generate(ctx context.Context, req domain.ReportRequest) (Run, error)
}

// Service composes the report client with an optional storage backend:
// create a pending record, call the remote service, then resolve the record
// to completed or failed.
type Service struct {
	client     report.Client
	store      reportstore.Store
	callbacks  Callbacks
	generating atomic.Bool
	lastError  atomic.Pointer[string]
}

// NewService builds a generator. store may be nil, in which case runs are
// not persisted.
func NewService(client report.Client, store reportstore.Store, callbacks Callbacks) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("report client is required")
	}
	return &Service{
		client:    client,
		store:     store,
		callbacks: callbacks,
	}, nil
}

func (s *Service) IsGenerating() bool {
	return s.generating.Load()
}

// LastError returns the failure message of the most recent run, or the
// empty string when the latest run succeeded. Starting a run clears it.
func (s *Service) LastError() string {
	if msg := s.lastError.Load(); msg != nil {
		return *msg
	}
	return ""
}

// Generate runs the full sequence. There is no atomicity across the remote
// call and the local write: a crash between them leaves the record pending.
// When both the remote call and the subsequent failure-write fail, the
// original client error is surfaced and the write failure is only logged.
func (s *Service) Generate(ctx context.Context, req domain.ReportRequest) (Run, error) {
	s.generating.Store(true)
	defer s.generating.Store(false)
	s.lastError.Store(nil)

	logger := zerolog.Ctx(ctx)
	started := time.Now()

	var recordID string
	if s.store != nil {
		id, err := s.store.Create(ctx, store.Report{Request: req})
		if err != nil {
			logger.Error().Err(err).Msg("failed to create report record")
			s.recordFailure(err.Error())
			return Run{}, err
		}
		recordID = id
	}

	results, err := s.client.Generate(ctx, req)
	durationMs := time.Since(started).Milliseconds()

	if err != nil {
		message := err.Error()
		if recordID != "" {
			if storeErr := s.store.MarkFailed(ctx, recordID, message, durationMs); storeErr != nil {
				logger.Error().
					Err(storeErr).
					Str("report_id", recordID).
					Msg("failed to record report failure")
			}
		}
		s.recordFailure(message)
		return Run{ID: recordID, DurationMs: durationMs}, err
	}

	if recordID != "" {
		if storeErr := s.store.MarkCompleted(ctx, recordID, results, durationMs); storeErr != nil {
			logger.Error().
				Err(storeErr).
				Str("report_id", recordID).
				Msg("failed to record report completion")
		}
	}

	if s.callbacks.OnSuccess != nil {
		s.callbacks.OnSuccess(recordID, results)
	}

	return Run{ID: recordID, Results: results, DurationMs: durationMs}, nil
}

// recordFailure remembers the message for LastError and notifies the
// error callback when one is registered.
func (s *Service) recordFailure(message string) {
	s.lastError.Store(&message)
	if s.callbacks.OnError != nil {
		s.callbacks.OnError(message)
	}
}
