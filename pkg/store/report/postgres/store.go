package postgres

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

// pgStore persists reports in Postgres. The seq column breaks created_at
// ties so newest-first ordering stays deterministic.
type pgStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (report.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &pgStore{db: db}, nil
}

// Factory adapts NewDB + NewStore to the registry contract.
func Factory(_ context.Context, settings report.BackendSettings) (report.Store, error) {
	db, err := NewDB(Settings{DSN: settings.DSN})
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

func (p *pgStore) Create(ctx context.Context, rec store.Report) (string, error) {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = p.db.ExecContext(ctx, query,
		id,
		string(rec.Status),
		request,
		response,
		rec.Error,
		time.Now().UTC(),
		rec.CompletedAt,
		rec.DurationMs,
	)
	if err != nil {
		return "", report.WrapStorage("create", err)
	}

	return id, nil
}

func (p *pgStore) MarkCompleted(ctx context.Context, id string, results []domain.GroupReport, durationMs int64) error {
	response, err := json.Marshal(results)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	query := `
		UPDATE reports
		SET status = $1, response = $2, error = NULL, completed_at = $3, duration_ms = $4
		WHERE id = $5 AND status = $6`

	res, err := p.db.ExecContext(ctx, query,
		string(store.ReportStatusCompleted),
		response,
		time.Now().UTC(),
		durationMs,
		id,
		string(store.ReportStatusPending),
	)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	return p.checkTransition(ctx, res, id)
}

func (p *pgStore) MarkFailed(ctx context.Context, id string, message string, durationMs int64) error {
	query := `
		UPDATE reports
		SET status = $1, response = NULL, error = $2, completed_at = $3, duration_ms = $4
		WHERE id = $5 AND status = $6`

	res, err := p.db.ExecContext(ctx, query,
		string(store.ReportStatusFailed),
		message,
		time.Now().UTC(),
		durationMs,
		id,
		string(store.ReportStatusPending),
	)
	if err != nil {
		return report.WrapStorage("update", err)
	}

	return p.checkTransition(ctx, res, id)
}

func (p *pgStore) checkTransition(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return report.WrapStorage("update", err)
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = p.db.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return report.ErrNotFound
	}
	if err != nil {
		return report.WrapStorage("update", err)
	}
	return report.ErrConflict
}

func (p *pgStore) Get(ctx context.Context, id string) (*store.Report, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, status, request, response, error, created_at, completed_at, duration_ms
		FROM reports
		WHERE id = $1`, id)

	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, report.WrapStorage("get", err)
	}
	return rec, nil
}

func (p *pgStore) List(ctx context.Context, filter store.ListFilter) (store.ReportPage, error) {
	where := ""
	args := make([]interface{}, 0, 3)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	page := store.ReportPage{Reports: []store.Report{}}
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+where, args...).Scan(&page.Total); err != nil {
		return store.ReportPage{}, report.WrapStorage("list", err)
	}

	query := `
		SELECT id, status, request, response, error, created_at, completed_at, duration_ms
		FROM reports` + where + `
		ORDER BY created_at DESC, seq DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
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

func (p *pgStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
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
		createdAt   time.Time
		completedAt sql.NullTime
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
	rec.CreatedAt = createdAt.UTC()
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		rec.CompletedAt = &at
	}
	if durationMs.Valid {
		d := durationMs.Int64
		rec.DurationMs = &d
	}

	return &rec, nil
}
