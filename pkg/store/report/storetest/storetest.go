// Package storetest exercises the report store contract. Every backend runs
// the same suite so behavior cannot drift between them.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	reportstore "github.com/de-tools/report-forge/pkg/store/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for each subtest.
type Factory func(t *testing.T) reportstore.Store

func sampleRequest() domain.ReportRequest {
	return domain.ReportRequest{
		From:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		To:             time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		PromptTemplate: "Daily Standup Report",
		GroupBy:        domain.GroupByRepository,
		Filters: []domain.FilterConfig{{
			Parameter: domain.FilterParameterRepository,
			Operator:  domain.FilterOperatorIn,
			Values:    []string{"backend"},
		}},
	}
}

func sampleResults() []domain.GroupReport {
	return []domain.GroupReport{
		{Group: "backend", Report: "# Backend\nAll quiet."},
	}
}

// Run drives the full contract against the backend under test.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create then get returns a pending record", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec)

		assert.Equal(t, id, rec.ID)
		assert.Equal(t, store.ReportStatusPending, rec.Status)
		assert.Equal(t, sampleRequest(), rec.Request)
		assert.Empty(t, rec.Response)
		assert.Nil(t, rec.Error)
		assert.Nil(t, rec.DurationMs)
		assert.Nil(t, rec.CompletedAt)
		assert.WithinDuration(t, time.Now(), rec.CreatedAt, 5*time.Second)
	})

	t.Run("create assigns unique ids", func(t *testing.T) {
		s := newStore(t)

		first, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		second, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("create honors caller-supplied status", func(t *testing.T) {
		s := newStore(t)

		msg := "imported as failed"
		id, err := s.Create(ctx, store.Report{
			Request: sampleRequest(),
			Status:  store.ReportStatusFailed,
			Error:   &msg,
		})
		require.NoError(t, err)

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, store.ReportStatusFailed, rec.Status)
		require.NotNil(t, rec.Error)
		assert.Equal(t, msg, *rec.Error)
	})

	t.Run("mark completed attaches results and duration", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)

		require.NoError(t, s.MarkCompleted(ctx, id, sampleResults(), 1200))

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, store.ReportStatusCompleted, rec.Status)
		assert.Equal(t, sampleResults(), rec.Response)
		assert.Nil(t, rec.Error)
		require.NotNil(t, rec.DurationMs)
		assert.Equal(t, int64(1200), *rec.DurationMs)
		assert.NotNil(t, rec.CompletedAt)
	})

	t.Run("mark failed attaches message and duration", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)

		require.NoError(t, s.MarkFailed(ctx, id, "boom", 340))

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, store.ReportStatusFailed, rec.Status)
		assert.Empty(t, rec.Response)
		require.NotNil(t, rec.Error)
		assert.Equal(t, "boom", *rec.Error)
		require.NotNil(t, rec.DurationMs)
		assert.Equal(t, int64(340), *rec.DurationMs)
		assert.NotNil(t, rec.CompletedAt)
	})

	t.Run("mark operations on a missing id return not found", func(t *testing.T) {
		s := newStore(t)

		err := s.MarkCompleted(ctx, "missing", sampleResults(), 10)
		assert.ErrorIs(t, err, reportstore.ErrNotFound)

		err = s.MarkFailed(ctx, "missing", "boom", 10)
		assert.ErrorIs(t, err, reportstore.ErrNotFound)
	})

	t.Run("mark operations on a terminal record return conflict", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		require.NoError(t, s.MarkCompleted(ctx, id, sampleResults(), 1200))

		assert.ErrorIs(t, s.MarkFailed(ctx, id, "late failure", 1300), reportstore.ErrConflict)
		assert.ErrorIs(t, s.MarkCompleted(ctx, id, nil, 1300), reportstore.ErrConflict)

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, store.ReportStatusCompleted, rec.Status)
		assert.Equal(t, sampleResults(), rec.Response)
		require.NotNil(t, rec.DurationMs)
		assert.Equal(t, int64(1200), *rec.DurationMs)
	})

	t.Run("get returns nil for a missing id", func(t *testing.T) {
		s := newStore(t)

		rec, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("list on an empty store", func(t *testing.T) {
		s := newStore(t)

		page, err := s.List(ctx, store.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Reports)
	})

	t.Run("list orders newest first with total before pagination", func(t *testing.T) {
		s := newStore(t)

		first, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		second, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		third, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)

		page, err := s.List(ctx, store.ListFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Reports, 1)
		assert.Equal(t, third, page.Reports[0].ID)

		page, err = s.List(ctx, store.ListFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Reports, 2)
		assert.Equal(t, second, page.Reports[0].ID)
		assert.Equal(t, first, page.Reports[1].ID)

		page, err = s.List(ctx, store.ListFilter{Offset: 5})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Empty(t, page.Reports)
	})

	t.Run("list filters by status", func(t *testing.T) {
		s := newStore(t)

		pending, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		failed, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)
		require.NoError(t, s.MarkFailed(ctx, failed, "boom", 5))

		page, err := s.List(ctx, store.ListFilter{Status: store.ReportStatusFailed})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Reports, 1)
		assert.Equal(t, failed, page.Reports[0].ID)

		page, err = s.List(ctx, store.ListFilter{Status: store.ReportStatusPending})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Reports, 1)
		assert.Equal(t, pending, page.Reports[0].ID)

		page, err = s.List(ctx, store.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)

		id, err := s.Create(ctx, store.Report{Request: sampleRequest()})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, id))

		rec, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, rec)

		assert.NoError(t, s.Delete(ctx, id))
		assert.NoError(t, s.Delete(ctx, "never-existed"))
	})
}
