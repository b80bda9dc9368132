package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/store/report"
	"github.com/de-tools/report-forge/pkg/store/report/backends"
)

// RunRenderer turns a page of stored runs into console output.
type RunRenderer interface {
	Handle(page store.ReportPage) error
}

type storeFlags struct {
	backend    string
	dbPath     string
	dsn        string
	project    string
	collection string
}

func (f *storeFlags) register(fs *pflag.FlagSet, defaultBackend string) {
	fs.StringVar(&f.backend, "backend", defaultBackend, "Storage backend: memory, sqlite, postgres or firestore")
	fs.StringVar(&f.dbPath, "db-path", "report-forge.db", "Database file path for the sqlite backend")
	fs.StringVar(&f.dsn, "dsn", "", "Connection string for the postgres backend")
	fs.StringVar(&f.project, "project", "", "GCP project id for the firestore backend")
	fs.StringVar(&f.collection, "collection", "", "Collection name for the firestore backend")
}

func (f *storeFlags) open(ctx context.Context, registry report.Registry) (report.Store, error) {
	return registry.Create(ctx, f.backend, report.BackendSettings{
		Path:       f.dbPath,
		DSN:        f.dsn,
		ProjectID:  f.project,
		Collection: f.collection,
	})
}

// NewRunsCmd groups the commands that browse and prune stored runs.
func NewRunsCmd(registry report.Registry, runs RunRenderer, results ResultRenderer) *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse and manage stored report runs",
	}

	flags.register(cmd.PersistentFlags(), backends.SQLite)

	cmd.AddCommand(newRunsListCmd(registry, &flags, runs))
	cmd.AddCommand(newRunsShowCmd(registry, &flags, results))
	cmd.AddCommand(newRunsDeleteCmd(registry, &flags))

	return cmd
}

func newRunsListCmd(registry report.Registry, flags *storeFlags, renderer RunRenderer) *cobra.Command {
	var (
		status string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := store.ListFilter{Limit: limit, Offset: offset}
			if status != "" {
				parsed, err := store.ParseReportStatus(status)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}

			recorder, err := flags.open(ctx, registry)
			if err != nil {
				return err
			}

			page, err := recorder.List(ctx, filter)
			if err != nil {
				return err
			}

			return renderer.Handle(page)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only runs with this status: pending, completed or failed")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")

	return cmd
}

func newRunsShowCmd(registry report.Registry, flags *storeFlags, renderer ResultRenderer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored run with its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			recorder, err := flags.open(ctx, registry)
			if err != nil {
				return err
			}

			record, err := recorder.Get(ctx, id)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("run %s not found", id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", record.ID)
			fmt.Fprintf(out, "Status:  %s\n", record.Status)
			fmt.Fprintf(out, "Created: %s\n", record.CreatedAt.Format("2006-01-02 15:04:05"))
			if record.DurationMs != nil {
				fmt.Fprintf(out, "Took:    %dms\n", *record.DurationMs)
			}

			switch record.Status {
			case store.ReportStatusFailed:
				if record.Error != nil {
					fmt.Fprintf(out, "Error:   %s\n", *record.Error)
				}
				return nil
			case store.ReportStatusCompleted:
				return renderer.Handle(record.Response)
			default:
				return nil
			}
		},
	}
}

func newRunsDeleteCmd(registry report.Registry, flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			recorder, err := flags.open(ctx, registry)
			if err != nil {
				return err
			}

			if err := recorder.Delete(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
			return nil
		},
	}
}
