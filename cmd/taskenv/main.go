// Command taskenv manages per-task git worktree environments.
package main

import (
	"fmt"
	"os"

	"github.com/valksor/go-taskenv/cmd/taskenv/commands"
	"github.com/valksor/go-taskenv/internal/display"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprint(os.Stderr, display.FormatError(err))
		os.Exit(display.ExitCode(err))
	}
}
