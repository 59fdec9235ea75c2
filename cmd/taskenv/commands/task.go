package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/display"
	"github.com/valksor/go-taskenv/internal/storage"
	"github.com/valksor/go-taskenv/internal/workspace"
)

var (
	taskParent string
	taskTitle  string
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Register and list task identities",
	GroupID: "task",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a task",
	Long: `Register a task in the project's task store.

A task added with --parent is a sub-task: it never gets a worktree of its
own and works in its parent's worktree instead.

Examples:
  taskenv task add auth --title "Auth rework"
  taskenv task add auth-login --parent auth`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd)

	taskAddCmd.Flags().StringVarP(&taskParent, "parent", "p", "", "Parent task id")
	taskAddCmd.Flags().StringVarP(&taskTitle, "title", "t", "", "Task title")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := workspace.ValidateTaskID(id); err != nil {
		return err
	}

	store, err := openTaskStore(cmd.Context())
	if err != nil {
		return err
	}

	task := &storage.TaskIdentity{ID: id, Title: taskTitle, ParentTask: taskParent}
	if err := store.Save(cmd.Context(), task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	msg := display.SuccessMsg("Registered task %s", display.Bold(id))
	if taskParent != "" {
		msg += display.Muted(" (sub-task of " + taskParent + ")")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runTaskList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openTaskStore(ctx)
	if err != nil {
		return err
	}

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(ids) == 0 {
		_, _ = fmt.Fprintln(out, "No tasks registered.")
		_, _ = fmt.Fprintln(out, "\nUse 'taskenv task add <id>' to register one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "TASK ID\tPARENT\tCREATED\tTITLE"); err != nil {
		return fmt.Errorf("print header: %w", err)
	}
	for _, id := range ids {
		task, err := store.Get(ctx, id)
		if err != nil {
			continue
		}
		parent := "-"
		if task.ParentTask != "" {
			parent = task.ParentTask
		}
		title := task.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		created := "-"
		if !task.CreatedAt.IsZero() {
			created = task.CreatedAt.Local().Format(display.TimestampFormat)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, parent, created, title); err != nil {
			return fmt.Errorf("print task: %w", err)
		}
	}

	return w.Flush()
}
