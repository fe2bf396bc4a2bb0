// Command tsshmem is an operator tool for the tablet-server shared
// exchange: purging orphaned segments left behind by a crashed process,
// and probing one exchange end to end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tsshmem",
		Short:         "Operator tool for the tablet-server shared-memory exchange",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCleanupCmd())
	root.AddCommand(newProbeCmd())
	return root
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
