package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/gate"
	"keelson-hq/sprintgate/pkg/policy"
	"keelson-hq/sprintgate/pkg/state"
	"keelson-hq/sprintgate/pkg/telemetry/health"
)

var doctorFlags struct {
	format string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the gate can do its job in this workspace",
	Long: `Doctor inspects the state document, the policy document, the
workspace root, the audit trail and repair declarations, and reports what
would make the gate deny more than expected.

Exits 1 when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		format, err := cli.ParseOutputFormat(doctorFlags.format)
		if err != nil {
			return err
		}

		cwd, _ := os.Getwd()
		report := newDoctor(a, cwd).Run(cmd.Context())
		if err := writeDoctorReport(cmd.OutOrStdout(), format, report); err != nil {
			return err
		}
		if report.Failed() {
			return cli.NewExitCodeError(cli.ExitError)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&doctorFlags.format, "format", "text", "output format: text, json, yaml")
}

// newDoctor registers one check per component the gate depends on.
func newDoctor(a *app, cwd string) *health.Checker {
	c := health.New(a.cfg.Boundary.Timeout + a.cfg.Audit.Recorder.WriteTimeout)

	c.Register("state", func(ctx context.Context) error {
		snap := state.Read(ctx, state.NewFileStore(a.cfg.State.Path))
		switch snap.Status {
		case state.StatusMissing:
			return health.Warn("no state document at %s; only reads and planning are allowed", a.cfg.State.Path)
		case state.StatusPresent:
			return nil
		default:
			return fmt.Errorf("state document %s is %s: %v", a.cfg.State.Path, snap.Status, snap.Err)
		}
	})

	c.Register("policy", func(ctx context.Context) error {
		rules, err := policy.Load(a.cfg.Policy.Path)
		if err != nil {
			return err
		}
		if rules.Source == "" {
			return health.Warn("no policy document at %s; built-in policy applies", a.cfg.Policy.Path)
		}
		return nil
	})

	c.Register("boundary", func(ctx context.Context) error {
		r := a.resolver(cwd)
		if r == nil {
			return fmt.Errorf("resolver %q unavailable; every file write will be denied", a.cfg.Boundary.Resolver)
		}
		if r.CurrentRoot(ctx) == "" {
			return fmt.Errorf("workspace root unresolved from %s; every file write will be denied", cwd)
		}
		return nil
	})

	c.Register("audit", func(ctx context.Context) error {
		if !a.cfg.Audit.Enabled {
			return health.Warn("audit trail disabled")
		}
		store, err := a.openStorage()
		if err != nil {
			return err
		}
		defer store.Close()
		_, err = store.Count(ctx, &audit.Query{})
		return err
	})

	c.Register("repair", func(ctx context.Context) error {
		decls, warnings := gate.LoadRepairScopes(repairDir(ctx, a), workspaceBase(ctx, a), a.cfg.Gate.RepairDocuments)
		if len(warnings) > 0 {
			return health.Warn("%s", strings.Join(warnings, "; "))
		}
		if len(decls) > 0 {
			return health.Warn("repair %s confines writes to %s", decls[0].ID, strings.Join(decls[0].Scope, ", "))
		}
		return nil
	})

	return c
}

func writeDoctorReport(out io.Writer, format cli.OutputFormat, report health.Report) error {
	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(out, report)
	}

	for _, r := range report.Checks {
		mark := "✓"
		switch r.Status {
		case health.StatusWarn:
			mark = "!"
		case health.StatusFail:
			mark = "✗"
		}
		if r.Message == "" {
			fmt.Fprintf(out, "%s %s\n", mark, r.Name)
		} else {
			fmt.Fprintf(out, "%s %s: %s\n", mark, r.Name, r.Message)
		}
	}
	fmt.Fprintf(out, "\nOverall: %s\n", report.Status)
	return nil
}
