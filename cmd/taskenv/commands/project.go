package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/config"
	"github.com/valksor/go-taskenv/internal/display"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Manage named projects in ~/.taskenv/projects.yaml",
	GroupID: "config",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register or update a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectAdd,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a project the current one",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUse,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectAddCmd, projectUseCmd)
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	projects, err := cfg.Projects()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(projects) == 0 {
		_, _ = fmt.Fprintln(out, "No projects registered.")
		_, _ = fmt.Fprintln(out, "\nUse 'taskenv project add <name> <path>' to register one.")
		return nil
	}

	current := cfg.RootConfig().ProjectName

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tPATH\tCURRENT"); err != nil {
		return fmt.Errorf("print header: %w", err)
	}
	for _, p := range projects {
		marker := ""
		if p.Name == current {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Path, marker); err != nil {
			return fmt.Errorf("print project: %w", err)
		}
	}

	return w.Flush()
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	if err := cfg.AddProject(args[0], args[1]); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), display.SuccessMsg("Registered project %s", display.Bold(args[0])))
	return nil
}

func runProjectUse(cmd *cobra.Command, args []string) error {
	if err := cfg.UseProject(args[0]); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, display.SuccessMsg("Current project is now %s", display.Bold(args[0])))

	// A higher-precedence source still wins over the projects file.
	if rc := cfg.RootConfig(); rc.Validated && rc.Source != config.SourceConfigFile {
		_, _ = fmt.Fprintln(out, display.InfoMsg("Root is still taken from %s: %s", rc.Source, rc.Path))
	}
	return nil
}
