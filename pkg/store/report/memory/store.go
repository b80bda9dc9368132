package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/store/report"
)

// memoryStore keeps records in process memory, newest-first ordering
// maintained via insertion order. Records are copied on the way in and out
// so callers can never mutate stored state.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]*store.Report
	order   []string // insertion order, oldest first
}

func NewStore() report.Store {
	return &memoryStore{
		records: make(map[string]*store.Report),
	}
}

// Factory adapts NewStore to the registry contract.
func Factory(_ context.Context, _ report.BackendSettings) (report.Store, error) {
	return NewStore(), nil
}

func (m *memoryStore) Create(_ context.Context, rec store.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = newID()
	rec.CreatedAt = time.Now().UTC()
	if rec.Status == "" {
		rec.Status = store.ReportStatusPending
	}

	clone := cloneReport(rec)
	m.records[rec.ID] = &clone
	m.order = append(m.order, rec.ID)

	return rec.ID, nil
}

func (m *memoryStore) MarkCompleted(_ context.Context, id string, results []domain.GroupReport, durationMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return report.ErrNotFound
	}
	if rec.Status.Terminal() {
		return report.ErrConflict
	}

	now := time.Now().UTC()
	rec.Status = store.ReportStatusCompleted
	rec.Response = cloneGroups(results)
	rec.Error = nil
	rec.CompletedAt = &now
	rec.DurationMs = &durationMs

	return nil
}

func (m *memoryStore) MarkFailed(_ context.Context, id string, message string, durationMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return report.ErrNotFound
	}
	if rec.Status.Terminal() {
		return report.ErrConflict
	}

	now := time.Now().UTC()
	rec.Status = store.ReportStatusFailed
	rec.Response = nil
	rec.Error = &message
	rec.CompletedAt = &now
	rec.DurationMs = &durationMs

	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*store.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}

	clone := cloneReport(*rec)
	return &clone, nil
}

func (m *memoryStore) List(_ context.Context, filter store.ListFilter) (store.ReportPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matching := make([]*store.Report, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.records[m.order[i]]
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matching = append(matching, rec)
	}

	page := store.ReportPage{
		Total:   len(matching),
		Reports: []store.Report{},
	}

	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(matching) {
		return page, nil
	}

	end := len(matching)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	for _, rec := range matching[start:end] {
		page.Reports = append(page.Reports, cloneReport(*rec))
	}

	return page, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return nil
	}

	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return nil
}

// newID builds a timestamp-prefixed identifier with a random suffix.
func newID() string {
	return fmt.Sprintf("%d-%06d", time.Now().UnixNano(), rand.Intn(1000000))
}

func cloneReport(rec store.Report) store.Report {
	clone := rec
	clone.Request = cloneRequest(rec.Request)
	clone.Response = cloneGroups(rec.Response)
	if rec.Error != nil {
		msg := *rec.Error
		clone.Error = &msg
	}
	if rec.CompletedAt != nil {
		at := *rec.CompletedAt
		clone.CompletedAt = &at
	}
	if rec.DurationMs != nil {
		d := *rec.DurationMs
		clone.DurationMs = &d
	}
	return clone
}

func cloneRequest(req domain.ReportRequest) domain.ReportRequest {
	clone := req
	if req.Filters != nil {
		clone.Filters = make([]domain.FilterConfig, len(req.Filters))
		for i, f := range req.Filters {
			clone.Filters[i] = f
			clone.Filters[i].Values = append([]string(nil), f.Values...)
		}
	}
	return clone
}

func cloneGroups(groups []domain.GroupReport) []domain.GroupReport {
	if groups == nil {
		return nil
	}
	return append([]domain.GroupReport(nil), groups...)
}
