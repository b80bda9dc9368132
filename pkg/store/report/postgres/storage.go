package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

const ReportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		status TEXT NOT NULL DEFAULT 'pending',
		request JSONB NOT NULL,
		response JSONB,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		duration_ms BIGINT
	);
`

var bootQueries = []string{
	ReportsSchema,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at DESC, seq DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);`,
}

type Settings struct {
	DSN string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if strings.TrimSpace(settings.DSN) == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	db, err := sql.Open("postgres", settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}

	for _, query := range bootQueries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return db, nil
}
