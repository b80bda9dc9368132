package terminal

import (
	"io"
	"os"

	"github.com/de-tools/report-forge/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-forge/pkg/runtime/terminal/export"

	"github.com/de-tools/report-forge/pkg/store/report"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry report.Registry
	reporter *Reporter
	exporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry report.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: NewReporter(opts.Output),
		exporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-forge",
		Short: "CodeRabbit report generation tool",
	}

	cmd.AddCommand(commands.NewGenerateCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewRunsCmd(cli.registry, cli.exporter, cli.reporter))
	cmd.AddCommand(commands.NewProfilesCmd())
	cmd.AddCommand(commands.NewBackendsCmd(cli.registry))

	return cmd
}
