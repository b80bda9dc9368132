package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/services/config"
	"github.com/de-tools/report-forge/pkg/services/generator"
	reportsvc "github.com/de-tools/report-forge/pkg/services/report"
	"github.com/de-tools/report-forge/pkg/store/report"
)

// ResultRenderer turns generated group reports into console output.
type ResultRenderer interface {
	Handle(groups []domain.GroupReport) error
}

type generateFlags struct {
	from       string
	to         string
	prompt     string
	template   string
	groupBy    string
	subgroupBy string
	filters    []string
	org        string

	client clientFlags
	store  storeFlags
}

func (f *generateFlags) buildRequest() (domain.ReportRequest, error) {
	from, err := time.Parse(domain.DateLayout, f.from)
	if err != nil {
		return domain.ReportRequest{}, fmt.Errorf("invalid from date %q, expected %s", f.from, domain.DateLayout)
	}
	to, err := time.Parse(domain.DateLayout, f.to)
	if err != nil {
		return domain.ReportRequest{}, fmt.Errorf("invalid to date %q, expected %s", f.to, domain.DateLayout)
	}

	req := domain.ReportRequest{
		From:           from,
		To:             to,
		Prompt:         f.prompt,
		PromptTemplate: f.template,
		GroupBy:        domain.GroupBy(strings.ToUpper(f.groupBy)),
		SubgroupBy:     domain.GroupBy(strings.ToUpper(f.subgroupBy)),
		OrgID:          f.org,
	}

	for _, raw := range f.filters {
		filter, err := parseFilter(raw)
		if err != nil {
			return domain.ReportRequest{}, err
		}
		req.Filters = append(req.Filters, filter)
	}

	if err := req.Validate(); err != nil {
		return domain.ReportRequest{}, err
	}
	return req, nil
}

// parseFilter decodes one --filter value of the form
// PARAMETER:OPERATOR:value[,value].
func parseFilter(raw string) (domain.FilterConfig, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return domain.FilterConfig{}, fmt.Errorf("invalid filter %q, expected PARAMETER:OPERATOR:value[,value]", raw)
	}

	values := strings.Split(parts[2], ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}

	return domain.FilterConfig{
		Parameter: domain.FilterParameter(strings.ToUpper(strings.TrimSpace(parts[0]))),
		Operator:  domain.FilterOperator(strings.ToUpper(strings.TrimSpace(parts[1]))),
		Values:    values,
	}, nil
}

// NewGenerateCmd creates the command that runs a report end to end: resolve
// configuration, call the remote service and render the result. With a
// --backend set the run is also recorded in storage.
func NewGenerateCmd(registry report.Registry, renderer ResultRenderer) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			req, err := flags.buildRequest()
			if err != nil {
				return err
			}

			cfg, err := flags.client.resolve(ctx)
			if err != nil {
				return err
			}

			var recorder report.Store
			if flags.store.backend != "" {
				recorder, err = flags.store.open(ctx, registry)
				if err != nil {
					return err
				}
			}

			svc, err := generator.NewService(reportsvc.NewClient(cfg), recorder, generator.Callbacks{})
			if err != nil {
				return err
			}

			run, err := svc.Generate(ctx, req)
			if err != nil {
				return err
			}

			if run.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", run.ID)
			}
			return renderer.Handle(run.Results)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Custom prompt for the report")
	cmd.Flags().StringVar(&flags.template, "template", "", "Named prompt template, e.g. \"Daily Standup Report\"")
	cmd.Flags().StringVar(&flags.groupBy, "group-by", "", "Primary grouping: REPOSITORY, LABEL, TEAM or USER")
	cmd.Flags().StringVar(&flags.subgroupBy, "subgroup-by", "", "Secondary grouping within each group")
	cmd.Flags().StringArrayVar(&flags.filters, "filter", nil, "Filter as PARAMETER:OPERATOR:value[,value], repeatable")
	cmd.Flags().StringVar(&flags.org, "org", "", "Organization id")

	flags.client.register(cmd.Flags())
	flags.store.register(cmd.Flags(), "")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

type clientFlags struct {
	apiKey      string
	baseURL     string
	timeout     string
	credentials string
	profile     string
}

func (f *clientFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.apiKey, "api-key", "", "CodeRabbit API key (overrides environment and credentials file)")
	fs.StringVar(&f.baseURL, "base-url", "", "API base URL")
	fs.StringVar(&f.timeout, "timeout", "", "Request timeout, milliseconds or a duration (600000, 10m)")
	fs.StringVar(&f.credentials, "credentials", defaultCredentialsPath(), "Path to the credentials file")
	fs.StringVar(&f.profile, "profile", config.DefaultProfile, "Credentials profile name")
}

// resolve builds the client configuration from the usual source chain:
// explicit flags, then environment, then the credentials profile.
func (f *clientFlags) resolve(ctx context.Context) (domain.ClientConfig, error) {
	sources := []config.Source{
		config.Static(map[string]string{
			config.KeyAPIKey:  f.apiKey,
			config.KeyBaseURL: f.baseURL,
			config.KeyTimeout: f.timeout,
		}),
		config.Env(config.EnvPrefix),
	}

	creds, err := config.LoadCredentials(f.credentials)
	if err != nil {
		// The credentials file is optional unless a profile was asked for
		// explicitly.
		if f.profile != config.DefaultProfile {
			return domain.ClientConfig{}, fmt.Errorf("failed to load credentials file %s: %w", f.credentials, err)
		}
	} else {
		src, err := creds.GetProfile(ctx, f.profile)
		if err != nil {
			if f.profile != config.DefaultProfile {
				return domain.ClientConfig{}, err
			}
		} else {
			sources = append(sources, src)
		}
	}

	return config.NewResolver(sources...).Resolve()
}

func defaultCredentialsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coderabbit")
}
