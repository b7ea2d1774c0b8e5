package main

import (
	"os"

	"github.com/trilinos/status-table-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.PrintFailure(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
