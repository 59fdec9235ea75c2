package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/display"
	"github.com/valksor/go-taskenv/internal/environment"
)

var envCmd = &cobra.Command{
	Use:     "env",
	Short:   "Resolve and provision task environments",
	GroupID: "env",
	Long: `An environment is the worktree a task runs in. Sub-tasks resolve to
their parent's environment, so all of them share one worktree.`,
}

var envResolveCmd = &cobra.Command{
	Use:   "resolve <task>",
	Short: "Print the environment id a task runs in",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvResolve,
}

var envEnsureCmd = &cobra.Command{
	Use:   "ensure <task>",
	Short: "Create the task's environment if needed and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvEnsure,
}

var envInfoCmd = &cobra.Command{
	Use:   "info <task>",
	Short: "Show the task's environment without creating it",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvInfo,
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envResolveCmd, envEnsureCmd, envInfoCmd)
}

func runEnvResolve(cmd *cobra.Command, args []string) error {
	resolver, err := newEnvironmentResolver(cmd.Context())
	if err != nil {
		return err
	}

	id, err := resolver.ResolveEnvironmentID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runEnvEnsure(cmd *cobra.Command, args []string) error {
	resolver, err := newEnvironmentResolver(cmd.Context())
	if err != nil {
		return err
	}

	info, err := resolver.EnsureTaskEnvironment(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, display.SuccessMsg("Environment %s is ready", display.Bold(info.ID)))
	printEnvironment(cmd, *info)
	return nil
}

func runEnvInfo(cmd *cobra.Command, args []string) error {
	resolver, err := newEnvironmentResolver(cmd.Context())
	if err != nil {
		return err
	}

	info, ok := resolver.TaskEnvironmentInfo(cmd.Context(), args[0])
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), display.Muted("No environment for "+args[0]))
		return nil
	}

	printEnvironment(cmd, info)
	return nil
}

func printEnvironment(cmd *cobra.Command, info environment.Info) {
	out := cmd.OutOrStdout()

	state := display.Warning("not created")
	switch {
	case info.Exists && info.IsActive:
		state = display.Success("active")
	case info.Exists:
		state = display.Warning("unknown")
	}

	_, _ = fmt.Fprint(out, display.KeyValue("Environment", info.ID))
	_, _ = fmt.Fprint(out, display.KeyValue("Path", display.Cyan(info.Path)))
	_, _ = fmt.Fprint(out, display.KeyValue("Branch", info.Branch))
	_, _ = fmt.Fprint(out, display.KeyValue("State", state))
}
