package main

import (
	"fmt"
	"os"

	"github.com/de-tools/report-forge/pkg/runtime/terminal"
	"github.com/de-tools/report-forge/pkg/store/report/backends"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: backends.NewRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
