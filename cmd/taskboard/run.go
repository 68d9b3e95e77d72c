package main

import (
	"context"
	"fmt"
	"io"

	"github.com/GITHIYON49/taskmanagementapp/internal/cli"
)

// Run executes the command tree and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := cli.NewRootCmd(Version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "taskboard:", err)
		return 1
	}
	return 0
}
