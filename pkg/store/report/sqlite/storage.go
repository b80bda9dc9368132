package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const ReportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'pending',
		request TEXT NOT NULL,
		response TEXT,
		error TEXT,
		created_at INTEGER NOT NULL,
		completed_at INTEGER,
		duration_ms INTEGER
	);
`

var bootQueries = []string{
	ReportsSchema,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);`,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if strings.TrimSpace(settings.DbPath) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := settings.DbPath
	if dsn != ":memory:" {
		dsn = filepath.Clean(dsn) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if dsn == ":memory:" {
		// Each connection to :memory: gets its own database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, query := range bootQueries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return db, nil
}
