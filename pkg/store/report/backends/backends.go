// Package backends wires the built-in storage backends into a registry.
package backends

import (
	"github.com/de-tools/report-forge/pkg/store/report"
	"github.com/de-tools/report-forge/pkg/store/report/firestore"
	"github.com/de-tools/report-forge/pkg/store/report/memory"
	"github.com/de-tools/report-forge/pkg/store/report/postgres"
	"github.com/de-tools/report-forge/pkg/store/report/sqlite"
)

const (
	Memory    = "memory"
	SQLite    = "sqlite"
	Postgres  = "postgres"
	Firestore = "firestore"
)

// NewRegistry returns a registry with every built-in backend registered.
func NewRegistry() report.Registry {
	r := report.NewRegistry()

	for name, factory := range map[string]report.Factory{
		Memory:    memory.Factory,
		SQLite:    sqlite.Factory,
		Postgres:  postgres.Factory,
		Firestore: firestore.Factory,
	} {
		// Registration of the built-ins cannot collide.
		_ = r.Register(name, factory)
	}

	return r
}
