// Package cmd is the cobra CLI driver: run one simulation configuration, or
// compare several policies against the same workload. Grounded on the
// teacher's cmd/root.go (rootCmd/runCmd shape, logrus level flag wired
// through cobra.Command.PersistentPreRun) generalized from a single vLLM run to this
// domain's run/compare subcommands.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "elise",
	Short: "Discrete-event HPC job-scheduling simulator with co-scheduling support",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
