package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// Reporter outputs generated reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(groups []domain.GroupReport) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(c.writer, "The report came back empty.")
		return err
	}

	tmpl := `
{{range .}}{{if .Group}}=== {{.Group}} ===

{{end}}{{.Report}}

{{end}}`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, groups)
}
