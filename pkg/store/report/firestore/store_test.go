package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	cf "cloud.google.com/go/firestore"
	"github.com/de-tools/report-forge/pkg/models/store"
	reportstore "github.com/de-tools/report-forge/pkg/store/report"
	"github.com/de-tools/report-forge/pkg/store/report/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("set FIRESTORE_EMULATOR_HOST to run the Firestore contract suite")
	}

	ctx := context.Background()
	client, err := cf.NewClient(ctx, "report-forge-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var n int
	storetest.Run(t, func(t *testing.T) reportstore.Store {
		// a fresh collection per subtest keeps runs isolated
		n++
		s, err := NewStore(client, fmt.Sprintf("reports-test-%d-%d", time.Now().UnixNano(), n))
		require.NoError(t, err)
		return s
	})
}

func TestNewStoreRequiresClient(t *testing.T) {
	_, err := NewStore(nil, "reports")
	assert.Error(t, err)
}

func TestDocToReportNormalizesTimes(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	completed := time.Date(2025, 7, 20, 12, 30, 0, 0, loc)
	msg := "boom"
	d := int64(1500)

	rec := docToReport("doc-1", reportDoc{
		Status:      "failed",
		Error:       &msg,
		CreatedAt:   time.Date(2025, 7, 20, 12, 0, 0, 0, loc),
		CompletedAt: &completed,
		DurationMs:  &d,
	})

	assert.Equal(t, "doc-1", rec.ID)
	assert.Equal(t, store.ReportStatusFailed, rec.Status)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, time.UTC, rec.CompletedAt.Location())
	require.NotNil(t, rec.Error)
	assert.Equal(t, "boom", *rec.Error)
}

func TestPaginate(t *testing.T) {
	records := []store.Report{{ID: "c"}, {ID: "b"}, {ID: "a"}}

	tests := []struct {
		name          string
		filter        store.ListFilter
		expectedIds   []string
		expectedTotal int
	}{
		{
			name:          "no window returns everything",
			filter:        store.ListFilter{},
			expectedIds:   []string{"c", "b", "a"},
			expectedTotal: 3,
		},
		{
			name:          "limit only",
			filter:        store.ListFilter{Limit: 2},
			expectedIds:   []string{"c", "b"},
			expectedTotal: 3,
		},
		{
			name:          "limit and offset",
			filter:        store.ListFilter{Limit: 2, Offset: 2},
			expectedIds:   []string{"a"},
			expectedTotal: 3,
		},
		{
			name:          "offset past the end",
			filter:        store.ListFilter{Offset: 10},
			expectedIds:   []string{},
			expectedTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := paginate(records, tt.filter)

			assert.Equal(t, tt.expectedTotal, page.Total)
			ids := make([]string, 0, len(page.Reports))
			for _, r := range page.Reports {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.expectedIds, ids)
		})
	}
}
