package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/display"
	"github.com/valksor/go-taskenv/internal/workspace"
)

var (
	worktreeForce bool
	worktreeBase  string
)

var worktreeCmd = &cobra.Command{
	Use:     "worktree",
	Short:   "Manage task worktrees directly",
	GroupID: "env",
	Long: `Manage task worktrees by task id. Unlike 'taskenv env', these commands
do not map sub-tasks onto their parent.`,
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live worktrees",
	Args:  cobra.NoArgs,
	RunE:  runWorktreeList,
}

var worktreeCreateCmd = &cobra.Command{
	Use:   "create <task>",
	Short: "Create or reuse the worktree for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreeCreate,
}

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove <task>",
	Short: "Remove a task's worktree, discarding uncommitted changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreeRemove,
}

var worktreePathCmd = &cobra.Command{
	Use:   "path <task>",
	Short: "Print where a task's worktree lives",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreePath,
}

func init() {
	rootCmd.AddCommand(worktreeCmd)
	worktreeCmd.AddCommand(worktreeListCmd, worktreeCreateCmd, worktreeRemoveCmd, worktreePathCmd)

	worktreeCreateCmd.Flags().BoolVarP(&worktreeForce, "force", "f", false, "Skip the reuse check and pass --force to git")
	worktreeCreateCmd.Flags().StringVarP(&worktreeBase, "base", "b", "", "Base branch for a new task branch (default: current branch)")
}

func runWorktreeList(cmd *cobra.Command, _ []string) error {
	infos, err := newWorkspaces().List(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(infos) == 0 {
		_, _ = fmt.Fprintln(out, "No worktrees.")
		_, _ = fmt.Fprintln(out, "\nUse 'taskenv env ensure <task>' to create one.")
		return nil
	}

	base, _ := workspace.NewPathResolver(cfg).BasePath()
	now := time.Now()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "TASK ID\tBRANCH\tCOMMIT\tACTIVITY\tSTATUS\tPATH"); err != nil {
		return fmt.Errorf("print header: %w", err)
	}
	for _, info := range infos {
		path := info.Path
		if base != "" {
			if rel, err := filepath.Rel(base, path); err == nil && len(rel) < len(path) {
				path = rel
			}
		}
		branch := info.Branch
		if branch == "" {
			branch = "(detached)"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.TaskID,
			branch,
			display.ShortHash(info.Commit),
			display.RelativeTime(info.LastActivity, now),
			display.ColorStatus(info.Status),
			path,
		); err != nil {
			return fmt.Errorf("print worktree: %w", err)
		}
	}

	return w.Flush()
}

func runWorktreeCreate(cmd *cobra.Command, args []string) error {
	info, err := newWorkspaces().Create(cmd.Context(), args[0], workspace.CreateOptions{
		Force: worktreeForce,
		Base:  worktreeBase,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, display.SuccessMsg("Worktree for %s", display.Bold(info.TaskID)))
	_, _ = fmt.Fprint(out, display.KeyValue("Path", display.Cyan(info.Path)))
	_, _ = fmt.Fprint(out, display.KeyValue("Branch", info.Branch))
	_, _ = fmt.Fprint(out, display.KeyValue("Commit", display.ShortHash(info.Commit)))
	return nil
}

func runWorktreeRemove(cmd *cobra.Command, args []string) error {
	if err := newWorkspaces().Remove(cmd.Context(), args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), display.SuccessMsg("Removed worktree for %s", display.Bold(args[0])))
	return nil
}

func runWorktreePath(cmd *cobra.Command, args []string) error {
	path, err := newWorkspaces().WorkspacePath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
