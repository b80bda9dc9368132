package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/server"
	"github.com/de-tools/report-forge/pkg/services/config"
	"github.com/de-tools/report-forge/pkg/services/generator"
	reportsvc "github.com/de-tools/report-forge/pkg/services/report"
	"github.com/de-tools/report-forge/pkg/store/report"
	"github.com/de-tools/report-forge/pkg/store/report/backends"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web service for Report Forge",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml",
		"Path to the service configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadApp(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)

	clientCfg, err := resolveClient(ctx, cfg)
	if err != nil {
		return err
	}

	client := reportsvc.NewClient(clientCfg)
	if !client.IsConfigured() {
		logger.Warn().Msg("no API key resolved, report generation will fail until one is configured")
	}

	recorder, err := backends.NewRegistry().Create(ctx, cfg.Storage.Backend, report.BackendSettings{
		Path:       cfg.Storage.Path,
		DSN:        cfg.Storage.DSN,
		ProjectID:  cfg.Storage.Project,
		Collection: cfg.Storage.Collection,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	logger.Info().Msgf("Storage backend `%s` ready.", cfg.Storage.Backend)

	svc, err := generator.NewService(client, recorder, generator.Callbacks{})
	if err != nil {
		return fmt.Errorf("failed to create generator service: %w", err)
	}

	api := server.NewWebAPI(server.Config{
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Generator: svc,
			Store:     recorder,
			Logger:    logger,
		},
	})

	return api.Start()
}

// resolveClient assembles the client configuration for the web service:
// environment variables first, then the credentials profile named in the
// app config.
func resolveClient(ctx context.Context, cfg *config.AppConfig) (domain.ClientConfig, error) {
	sources := []config.Source{config.Env(config.EnvPrefix)}

	credsPath := cfg.Credentials
	if credsPath == "" {
		home, _ := os.UserHomeDir()
		credsPath = filepath.Join(home, ".coderabbit")
	}

	creds, err := config.LoadCredentials(credsPath)
	if err != nil {
		// The credentials file is optional unless a profile was asked for
		// explicitly.
		if cfg.Profile != config.DefaultProfile {
			return domain.ClientConfig{}, fmt.Errorf("failed to load credentials file %s: %w", credsPath, err)
		}
	} else {
		src, err := creds.GetProfile(ctx, cfg.Profile)
		if err != nil {
			if cfg.Profile != config.DefaultProfile {
				return domain.ClientConfig{}, err
			}
		} else {
			sources = append(sources, src)
		}
	}

	return config.NewResolver(sources...).Resolve()
}
