package firestore

import (
	"context"
	"fmt"
	"time"

	cf "cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/store/report"
)

const DefaultCollection = "reports"

type Settings struct {
	ProjectID  string
	Collection string
}

func NewClient(ctx context.Context, settings Settings, opts ...option.ClientOption) (*cf.Client, error) {
	if settings.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}

	client, err := cf.NewClient(ctx, settings.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// reportDoc is the document shape. Field names are this adapter's private
// mapping and never leak to callers.
type reportDoc struct {
	Status      string               `firestore:"status"`
	Request     domain.ReportRequest `firestore:"request"`
	Response    []domain.GroupReport `firestore:"response"`
	Error       *string              `firestore:"error"`
	CreatedAt   time.Time            `firestore:"createdAt"`
	CompletedAt *time.Time           `firestore:"completedAt"`
	DurationMs  *int64               `firestore:"durationMs"`
}

type fsStore struct {
	client     *cf.Client
	collection string
}

func NewStore(client *cf.Client, collection string) (report.Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is nil")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &fsStore{client: client, collection: collection}, nil
}

// Factory adapts NewClient + NewStore to the registry contract.
func Factory(ctx context.Context, settings report.BackendSettings) (report.Store, error) {
	client, err := NewClient(ctx, Settings{
		ProjectID:  settings.ProjectID,
		Collection: settings.Collection,
	})
	if err != nil {
		return nil, err
	}
	return NewStore(client, settings.Collection)
}

func (f *fsStore) Create(ctx context.Context, rec store.Report) (string, error) {
	if rec.Status == "" {
		rec.Status = store.ReportStatusPending
	}

	id := uuid.NewString()
	doc := reportDoc{
		Status:      string(rec.Status),
		Request:     rec.Request,
		Response:    rec.Response,
		Error:       rec.Error,
		CreatedAt:   time.Now().UTC(),
		CompletedAt: rec.CompletedAt,
		DurationMs:  rec.DurationMs,
	}

	if _, err := f.client.Collection(f.collection).Doc(id).Set(ctx, doc); err != nil {
		return "", report.WrapStorage("create", err)
	}
	return id, nil
}

func (f *fsStore) MarkCompleted(ctx context.Context, id string, results []domain.GroupReport, durationMs int64) error {
	return f.transition(ctx, id, func(doc *reportDoc) {
		now := time.Now().UTC()
		doc.Status = string(store.ReportStatusCompleted)
		doc.Response = results
		doc.Error = nil
		doc.CompletedAt = &now
		doc.DurationMs = &durationMs
	})
}

func (f *fsStore) MarkFailed(ctx context.Context, id string, message string, durationMs int64) error {
	return f.transition(ctx, id, func(doc *reportDoc) {
		now := time.Now().UTC()
		doc.Status = string(store.ReportStatusFailed)
		doc.Response = nil
		doc.Error = &message
		doc.CompletedAt = &now
		doc.DurationMs = &durationMs
	})
}

// transition applies a terminal state change inside a transaction so the
// pending check and the write are atomic.
func (f *fsStore) transition(ctx context.Context, id string, apply func(*reportDoc)) error {
	ref := f.client.Collection(f.collection).Doc(id)

	err := f.client.RunTransaction(ctx, func(_ context.Context, tx *cf.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return report.ErrNotFound
		}
		if err != nil {
			return err
		}

		var doc reportDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if store.ReportStatus(doc.Status).Terminal() {
			return report.ErrConflict
		}

		apply(&doc)
		return tx.Set(ref, doc)
	})

	return report.WrapStorage("update", err)
}

func (f *fsStore) Get(ctx context.Context, id string) (*store.Report, error) {
	snap, err := f.client.Collection(f.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, report.WrapStorage("get", err)
	}

	var doc reportDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, report.WrapStorage("get", err)
	}

	rec := docToReport(snap.Ref.ID, doc)
	return &rec, nil
}

func (f *fsStore) List(ctx context.Context, filter store.ListFilter) (store.ReportPage, error) {
	query := f.client.Collection(f.collection).Query
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	query = query.OrderBy("createdAt", cf.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	matching := make([]store.Report, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return store.ReportPage{}, report.WrapStorage("list", err)
		}

		var doc reportDoc
		if err := snap.DataTo(&doc); err != nil {
			return store.ReportPage{}, report.WrapStorage("list", err)
		}
		matching = append(matching, docToReport(snap.Ref.ID, doc))
	}

	return paginate(matching, filter), nil
}

func (f *fsStore) Delete(ctx context.Context, id string) error {
	// Firestore deletes are no-ops for absent documents.
	if _, err := f.client.Collection(f.collection).Doc(id).Delete(ctx); err != nil {
		return report.WrapStorage("delete", err)
	}
	return nil
}

func docToReport(id string, doc reportDoc) store.Report {
	rec := store.Report{
		ID:         id,
		Status:     store.ReportStatus(doc.Status),
		Request:    doc.Request,
		Response:   doc.Response,
		Error:      doc.Error,
		CreatedAt:  doc.CreatedAt.UTC(),
		DurationMs: doc.DurationMs,
	}
	if doc.CompletedAt != nil {
		at := doc.CompletedAt.UTC()
		rec.CompletedAt = &at
	}
	return rec
}

// paginate applies Total-before-window semantics to an already ordered and
// filtered result set.
func paginate(matching []store.Report, filter store.ListFilter) store.ReportPage {
	page := store.ReportPage{
		Total:   len(matching),
		Reports: []store.Report{},
	}

	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(matching) {
		return page
	}

	end := len(matching)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	page.Reports = append(page.Reports, matching[start:end]...)
	return page
}
