package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valksor/go-taskenv/internal/config"
	"github.com/valksor/go-taskenv/internal/display"
	"github.com/valksor/go-taskenv/internal/log"
)

var (
	cfg *config.Manager

	// Global flags.
	rootFlag string
	verbose  bool
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "taskenv",
	Short: "Per-task git worktree environments",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Long: `taskenv gives every task its own git worktree next to the project root,
while sub-tasks share their parent's worktree.

The project root is resolved from, in order: --root, $TASKENV_ROOT, the
current project in ~/.taskenv/projects.yaml, or the nearest directory above
the working directory containing .tasks/ or .git/.

Quick Start:
  taskenv task add login            Register a task
  taskenv env ensure login          Create (or reuse) its worktree
  taskenv worktree list             Show live worktrees
  taskenv worktree remove login     Remove it again`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env first so TASKENV_* variables apply to everything below.
		if err := config.LoadDotEnvFromCwd(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .tasks/.env: %v\n", err)
		}

		level := log.LevelFromEnv(log.LevelWarn)
		log.Configure(log.Options{
			Level:   level,
			Verbose: verbose,
		})

		display.InitColors(noColor)

		cfg = config.NewManager()
		if rootFlag != "" {
			if err := cfg.SetRootFromCLI(rootFlag); err != nil {
				return err
			}
		}

		log.Debug("initialized", "verbose", verbose, "root_flag", rootFlag)
		return nil
	},
}

// Execute runs the root command with signal handling.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (overrides $TASKENV_ROOT and projects.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "env",
		Title: "Environment Commands:",
	}, &cobra.Group{
		ID:    "task",
		Title: "Task Commands:",
	}, &cobra.Group{
		ID:    "config",
		Title: "Configuration Commands:",
	})
}
