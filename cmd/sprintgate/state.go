package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/state"
)

var stateFlags struct {
	format string
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect the project state document",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the project state as the gate sees it",
	Long: `Load the project state document and print it together with its load
status (present, missing, corrupt or unreadable).

Examples:
  sprintgate state show
  sprintgate state show --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return showState(cmd.Context(), a, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)

	stateShowCmd.Flags().StringVar(&stateFlags.format, "format", "text", "output format: text, json, yaml")
}

// stateReport is the printable form of a state snapshot.
type stateReport struct {
	Path   string         `json:"path" yaml:"path"`
	Status state.Status   `json:"status" yaml:"status"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
	State  map[string]any `json:"state,omitempty" yaml:"state,omitempty"`
}

func showState(ctx context.Context, a *app, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := cli.ParseOutputFormat(stateFlags.format)
	if err != nil {
		return err
	}

	snap := state.Read(ctx, state.NewFileStore(a.cfg.State.Path))
	report := stateReport{Path: a.cfg.State.Path, Status: snap.Status}
	if snap.Err != nil {
		report.Error = snap.Err.Error()
	}
	if snap.Usable() {
		// A round trip through JSON keeps the document's own key names and
		// any keys the typed view does not model.
		data, err := json.Marshal(snap.State)
		if err != nil {
			return cli.NewCommandError("state", err)
		}
		if err := json.Unmarshal(data, &report.State); err != nil {
			return cli.NewCommandError("state", err)
		}
	}

	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(out, report)
	}
	return writeStateText(out, report, snap, a.cfg.Gate.DefaultMaxIterations)
}

func writeStateText(out io.Writer, report stateReport, snap state.Snapshot, defaultMax int) error {
	fmt.Fprintf(out, "State file: %s\n", report.Path)
	fmt.Fprintf(out, "Status:     %s\n", report.Status)
	if report.Error != "" {
		fmt.Fprintf(out, "Error:      %s\n", report.Error)
	}
	if !snap.Usable() {
		return nil
	}

	s := snap.State
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Foundation complete: %t\n", s.Foundation.Complete)
	if s.Foundation.CurrentPhase != "" {
		fmt.Fprintf(out, "Foundation phase:    %s\n", s.Foundation.CurrentPhase)
	}
	fmt.Fprintf(out, "Planning completed:  %t\n", s.PlanningChecklist.Completed)
	if gates := s.IncompleteGates(); len(gates) > 0 {
		fmt.Fprintf(out, "Incomplete gates:    %s\n", strings.Join(gates, ", "))
	}

	sp := s.ActiveSprint()
	if sp == nil {
		fmt.Fprintln(out, "Active sprint:       none")
		return nil
	}
	fmt.Fprintf(out, "Active sprint:       %s\n", sp.ID)
	if sp.Phase != "" {
		fmt.Fprintf(out, "  Phase:             %s\n", sp.Phase)
	}
	fmt.Fprintf(out, "  Iteration:         %d/%d\n", sp.Iteration, sp.EffectiveMaxIterations(defaultMax))
	if sp.Locked() {
		fmt.Fprintf(out, "  Locked files:      %s\n", strings.Join(sp.LockedFiles, ", "))
	}
	if sp.ExecutionContext.LastToolUsed != "" {
		fmt.Fprintf(out, "  Last tool:         %s at %s\n",
			sp.ExecutionContext.LastToolUsed, sp.ExecutionContext.ExecutionTimestamp)
	}
	return nil
}
