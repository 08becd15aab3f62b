package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sprintgate",
	Short: "sprintgate - policy gate for autonomous coding agents",
	Long: `sprintgate enforces a sprint workflow on an autonomous coding agent.

Every proposed tool call passes through an ordered check pipeline:
  - foundation and planning prerequisites
  - workflow command sequencing and self-assessment checkpoints
  - sprint scope and iteration budget
  - tool permissions
  - destructive command and protected file validation

Completed actions are reviewed for lazy output, error signatures, token
isolation and missing sanity checks. Every verdict is written to an audit
trail.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", ".sprintgate/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
