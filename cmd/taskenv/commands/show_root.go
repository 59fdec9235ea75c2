package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/config"
	"github.com/valksor/go-taskenv/internal/display"
	"github.com/valksor/go-taskenv/internal/log"
	"github.com/valksor/go-taskenv/internal/workspace"
)

var rootWatch bool

var showRootCmd = &cobra.Command{
	Use:     "root",
	Short:   "Show the active project root and where it came from",
	GroupID: "config",
	Long: `Show the active project root, the source that supplied it, and the
workspace directory derived from it.

With --watch, keep running and print the root again whenever
~/.taskenv/projects.yaml changes.`,
	Args: cobra.NoArgs,
	RunE: runShowRoot,
}

func init() {
	rootCmd.AddCommand(showRootCmd)
	showRootCmd.Flags().BoolVarP(&rootWatch, "watch", "w", false, "Print changes to the resolved root until interrupted")
}

func runShowRoot(cmd *cobra.Command, _ []string) error {
	rc := cfg.RootConfig()
	printRootConfig(cmd, rc)

	if !rootWatch {
		if !rc.Validated {
			return fmt.Errorf("no project root found (searched from the working directory up)")
		}
		return nil
	}

	ctx := cmd.Context()
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- cfg.Watch(ctx, ready) }()

	select {
	case <-ready:
	case err := <-errCh:
		return err
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := rc
	for {
		select {
		case <-ctx.Done():
			return <-errCh
		case err := <-errCh:
			return err
		case <-ticker.C:
			if current := cfg.RootConfig(); current != last {
				log.Debug("resolved root changed", log.Path(current.Path))
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), display.SeparatorLine)
				printRootConfig(cmd, current)
				last = current
			}
		}
	}
}

func printRootConfig(cmd *cobra.Command, rc config.RootConfig) {
	out := cmd.OutOrStdout()

	if !rc.Validated {
		_, _ = fmt.Fprintln(out, display.WarningMsg("No project root"))
		return
	}

	_, _ = fmt.Fprint(out, display.KeyValue("Root", display.Cyan(rc.Path)))
	_, _ = fmt.Fprint(out, display.KeyValue("Source", rc.Source.String()))
	if rc.ProjectName != "" {
		_, _ = fmt.Fprint(out, display.KeyValue("Project", rc.ProjectName))
	}
	if dir, err := workspace.NewPathResolver(cfg).BasePath(); err == nil {
		_, _ = fmt.Fprint(out, display.KeyValue("Worktrees", dir))
	}
}
