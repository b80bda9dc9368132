package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
)

type TableConfig struct {
	IdWidth       int
	StatusWidth   int
	CreatedWidth  int
	DurationWidth int
	PeriodWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IdWidth:       36,
		StatusWidth:   9,
		CreatedWidth:  16,
		DurationWidth: 10,
		PeriodWidth:   24,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(page store.ReportPage) error {
	funcMap := template.FuncMap{
		"formatRow": func(id, status, created, duration, period interface{}) string {
			return fmt.Sprintf("| %-*v | %-*v | %-*v | %-*v | %-*v |",
				c.config.IdWidth, id,
				c.config.StatusWidth, status,
				c.config.CreatedWidth, created,
				c.config.DurationWidth, duration,
				c.config.PeriodWidth, period)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.IdWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.CreatedWidth+2),
				strings.Repeat("-", c.config.DurationWidth+2),
				strings.Repeat("-", c.config.PeriodWidth+2))
		},
		"formatDuration": func(ms *int64) string {
			if ms == nil {
				return "-"
			}
			return (time.Duration(*ms) * time.Millisecond).String()
		},
		"formatPeriod": func(req domain.ReportRequest) string {
			return fmt.Sprintf("%s to %s",
				req.From.Format(domain.DateLayout),
				req.To.Format(domain.DateLayout))
		},
	}

	tmpl := `
Runs: {{len .Reports}} of {{.Total}}

{{separator}}
{{formatRow "ID" "Status" "Created" "Duration" "Period"}}
{{separator}}
{{range .Reports}}{{formatRow .ID .Status (.CreatedAt.Format "2006-01-02 15:04") (formatDuration .DurationMs) (formatPeriod .Request)}}
{{end}}{{separator}}
`

	t, err := template.New("runs").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, page)
}
