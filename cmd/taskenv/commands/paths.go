package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/paths"
)

var pathsCmd = &cobra.Command{
	Use:     "paths",
	Short:   "Show where taskenv keeps templates, modes, tasks, sessions and config",
	GroupID: "config",
	Long: `Show the resolved location of each kind of project data.

Templates and modes live in the checkout (.tasks/), so a worktree sees its
own copy. Tasks, sessions and config live in ~/.taskenv/projects/<project>,
shared by the main checkout and all of its worktrees.`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, _ []string) error {
	pc, err := pathContext(cmd.Context())
	if err != nil {
		return err
	}
	resolver := paths.NewResolver()
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "Execution root: %s\n", pc.ExecutionRoot)
	if pc.InWorktree() {
		_, _ = fmt.Fprintf(out, "Main repository: %s\n", pc.MainRepoRoot)
	}
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "KIND\tPATH\tFALLBACKS"); err != nil {
		return fmt.Errorf("print header: %w", err)
	}
	for _, kind := range paths.Kinds {
		candidates, err := resolver.ResolveWithPrecedence(kind, pc)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", kind, err)
		}
		fallbacks := "-"
		if len(candidates) > 1 {
			fallbacks = strings.Join(candidates[1:], ", ")
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", kind, candidates[0], fallbacks); err != nil {
			return fmt.Errorf("print path: %w", err)
		}
	}

	return w.Flush()
}
