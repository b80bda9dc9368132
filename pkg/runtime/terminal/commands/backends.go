package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/de-tools/report-forge/pkg/store/report"
)

// NewBackendsCmd creates the command that lists the registered storage
// backends.
func NewBackendsCmd(registry report.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available storage backends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := registry.ListBackends()
			sort.Strings(names)

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
