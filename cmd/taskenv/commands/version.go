package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// No project root is needed here.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run:               runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "Print only the version")
}

func runVersion(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	if versionShort {
		_, _ = fmt.Fprintln(out, Version)
		return
	}

	_, _ = fmt.Fprintf(out, "taskenv %s\n", Version)
	_, _ = fmt.Fprintf(out, "  Commit:   %s\n", Commit)
	_, _ = fmt.Fprintf(out, "  Built:    %s\n", BuildTime)
	_, _ = fmt.Fprintf(out, "  Go:       %s\n", runtime.Version())
	_, _ = fmt.Fprintf(out, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
