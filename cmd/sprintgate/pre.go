package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/audit/recorder"
	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/gate"
	"keelson-hq/sprintgate/pkg/hook"
	"keelson-hq/sprintgate/pkg/state"
)

var preCmd = &cobra.Command{
	Use:   "pre",
	Short: "Evaluate a proposed action (pre-action hook)",
	Long: `Read a proposed tool call from stdin and decide whether it may run.

The verdict is written to stdout as JSON. The exit status is 0 when the
action is allowed and 2 when it is denied, so the agent host can block the
call without parsing the verdict.

Input:
  {"tool_name": "Bash", "tool_input": {"command": "..."}, "cwd": "...",
   "session_id": "...", "prompt": "..."}

Examples:
  echo '{"tool_name":"Read","tool_input":{"file_path":"README.md"}}' | sprintgate pre`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		code := runPre(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		if code != cli.ExitAllow {
			return cli.NewExitCodeError(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preCmd)
}

// runPre evaluates one envelope and writes the verdict. It returns the
// process exit code.
func runPre(ctx context.Context, a *app, in io.Reader, out io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	env, decodeErr := hook.Decode(in)

	cwd := ""
	if env != nil {
		cwd = env.CWD
	}
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	policies := a.policyManager()
	g, err := gate.New(gate.Options{
		Store:    state.NewFileStore(a.cfg.State.Path),
		Resolver: a.resolver(cwd),
		Policy:   policies,
		Config:   gate.ConfigFrom(a.cfg.Gate),
		Logger:   a.logger,
		Metrics:  a.collector.Gate(),
		Tracer:   a.tracer,
	})
	if err != nil {
		a.logger.Error("gate unavailable", "error", err)
		writeJSON(out, gate.Verdict{
			Allowed:  false,
			Reason:   "gate unavailable: " + err.Error(),
			Severity: gate.SeverityCritical,
		})
		return cli.ExitBlock
	}

	start := time.Now()
	var req gate.Request
	var verdict gate.Verdict
	if decodeErr != nil {
		verdict = g.Reject(ctx, decodeErr)
	} else {
		req = gate.RequestFromEnvelope(env)
		verdict = g.Evaluate(ctx, req)
	}
	elapsed := time.Since(start)

	rec, closeAudit := a.openRecorder()
	if rec != nil {
		err := rec.RecordGate(ctx, recorder.GateEntry{
			Request:      req,
			Verdict:      verdict,
			Elapsed:      elapsed,
			PolicyDigest: policies.Rules().Digest,
		})
		if err != nil {
			a.logger.Warn("verdict not recorded", "error", err)
		}
	}
	closeAudit()

	if err := writeJSON(out, verdict); err != nil {
		a.logger.Error("failed to write verdict", "error", err)
	}
	if !verdict.Allowed {
		return cli.ExitBlock
	}
	return cli.ExitAllow
}

// writeJSON writes v as one line of JSON.
func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
