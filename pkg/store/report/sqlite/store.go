package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/store/report"
)

type sqliteStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (report.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &sqliteStore{db: db}, nil
}

// Factory adapts NewDB + NewStore to the registry contract.
func Factory(_ context.Context, settings report.BackendSettings) (report.Store, error) {
	db, err := NewDB(Settings{DbPath: settings.Path})
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

func (s *sqliteStore) Create(ctx context.Context, rec store.Report) (string, error) {
	if rec.Status == "" {
		rec.Status = store.ReportStatusPending
	}

	request, err := json.Marshal(rec.Request)
	if err != nil {
		return "", report.WrapStorage("create", err)
	}

	var response []byte
	if rec.Response != nil {
		if response, err = json.Marshal(rec.Response); err != nil {
			return "", report.WrapStorage("create", err)
		}
	}

	id := uuid.NewString()
	query := `
		INSERT INTO reports (id, status, request, response, error, created_at, completed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		id,
		string(rec.Status),
		request,
		response,
		rec.Error,
		toMillis(time.Now()),
		millisOrNil(rec.CompletedAt),
		rec.DurationMs,
	)
	if err != nil {
		return "", report.WrapStorage("create", err)
	}

	return id, nil
}

func (s *sqliteStore) MarkCompleted(ctx context.Context, id string, results []domain.GroupReport, durationMs int64) error {
	response, err := json.Marshal(results)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	query := `
		UPDATE reports
		SET status = ?, response = ?, error = NULL, completed_at = ?, duration_ms = ?
		WHERE id = ? AND status = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(store.ReportStatusCompleted),
		response,
		toMillis(time.Now()),
		durationMs,
		id,
		string(store.ReportStatusPending),
	)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	return s.checkTransition(ctx, res, id)
}

func (s *sqliteStore) MarkFailed(ctx context.Context, id string, message string, durationMs int64) error {
	query := `
		UPDATE reports
		SET status = ?, response = NULL, error = ?, completed_at = ?, duration_ms = ?
		WHERE id = ? AND status = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(store.ReportStatusFailed),
		message,
		toMillis(time.Now()),
		durationMs,
		id,
		string(store.ReportStatusPending),
	)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	return s.checkTransition(ctx, res, id)
}

// checkTransition inspects a guarded pending-only UPDATE. Zero rows affected
// means either the id does not exist or the record is already terminal.
func (s *sqliteStore) checkTransition(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return report.WrapStorage("update", err)
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return report.ErrNotFound
	}
	if err != nil {
		return report.WrapStorage("update", err)
	}
	return report.ErrConflict
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*store.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, request, response, error, created_at, completed_at, duration_ms
		FROM reports
		WHERE id = ?`, id)

	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, report.WrapStorage("get", err)
	}
	return rec, nil
}

func (s *sqliteStore) List(ctx context.Context, filter store.ListFilter) (store.ReportPage, error) {
	where := ""
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		where = " WHERE status = ?"
		args = append(args, string(filter.Status))
	}

	page := store.ReportPage{Reports: []store.Report{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+where, args...).Scan(&page.Total); err != nil {
		return store.ReportPage{}, report.WrapStorage("list", err)
	}

	query := `
		SELECT id, status, request, response, error, created_at, completed_at, duration_ms
		FROM reports` + where + `
		ORDER BY created_at DESC, rowid DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return store.ReportPage{}, report.WrapStorage("list", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return store.ReportPage{}, report.WrapStorage("list", err)
		}
		page.Reports = append(page.Reports, *rec)
	}
	if err := rows.Err(); err != nil {
		return store.ReportPage{}, report.WrapStorage("list", err)
	}

	return page, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id); err != nil {
		return report.WrapStorage("delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*store.Report, error) {
	var (
		rec         store.Report
		status      string
		requestRaw  []byte
		responseRaw []byte
		errMsg      sql.NullString
		createdAt   int64
		completedAt sql.NullInt64
		durationMs  sql.NullInt64
	)

	err := row.Scan(&rec.ID, &status, &requestRaw, &responseRaw, &errMsg, &createdAt, &completedAt, &durationMs)
	if err != nil {
		return nil, err
	}

	rec.Status = store.ReportStatus(status)
	if err := json.Unmarshal(requestRaw, &rec.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if len(responseRaw) > 0 {
		if err := json.Unmarshal(responseRaw, &rec.Response); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if errMsg.Valid {
		msg := errMsg.String
		rec.Error = &msg
	}
	rec.CreatedAt = fromMillis(createdAt)
	if completedAt.Valid {
		at := fromMillis(completedAt.Int64)
		rec.CompletedAt = &at
	}
	if durationMs.Valid {
		d := durationMs.Int64
		rec.DurationMs = &d
	}

	return &rec, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func millisOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := toMillis(*t)
	return &ms
}
