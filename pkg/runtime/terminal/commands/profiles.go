package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/report-forge/pkg/services/config"
)

// NewProfilesCmd creates the command that lists the profiles found in the
// credentials file.
func NewProfilesCmd() *cobra.Command {
	var credentialsPath string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List profiles from the credentials file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := config.LoadCredentials(credentialsPath)
			if err != nil {
				return fmt.Errorf("failed to load credentials file %s: %w", credentialsPath, err)
			}

			profiles, err := creds.GetProfiles(cmd.Context())
			if err != nil {
				return err
			}

			for _, profile := range profiles {
				fmt.Fprintln(cmd.OutOrStdout(), profile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&credentialsPath, "credentials", defaultCredentialsPath(), "Path to the credentials file")

	return cmd
}
