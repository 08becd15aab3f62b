package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/audit/recorder"
	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/feedback"
	"keelson-hq/sprintgate/pkg/hook"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Review a completed action (post-action hook)",
	Long: `Read a completed tool call and its output from stdin and classify it.

The feedback verdict is written to stdout as JSON. The exit status is 2 when
the verdict blocks the workflow (anything but "success").

Input:
  {"tool_name": "Edit", "tool_input": {"file_path": "..."},
   "tool_response": "..." | "output": "...", "success": true}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		code := runPost(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		if code != cli.ExitAllow {
			return cli.NewExitCodeError(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
}

// runPost classifies one result envelope and writes the verdict. It
// returns the process exit code.
func runPost(ctx context.Context, a *app, in io.Reader, out io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := feedback.New(feedback.Options{
		Config:  a.cfg.Feedback,
		Logger:  a.logger,
		Metrics: a.collector.Feedback(),
		Tracer:  a.tracer,
	})
	if err != nil {
		a.logger.Error("feedback engine unavailable", "error", err)
		writeJSON(out, feedback.Verdict{
			Status:         feedback.StatusFailure,
			Message:        "feedback engine unavailable: " + err.Error(),
			BlocksWorkflow: true,
			Severity:       "critical",
		})
		return cli.ExitBlock
	}

	start := time.Now()
	var result feedback.Result
	var verdict feedback.Verdict

	env, err := hook.Decode(in)
	if err != nil {
		verdict = feedback.Verdict{
			Status:         feedback.StatusFailure,
			Message:        "malformed result envelope: " + err.Error(),
			BlocksWorkflow: true,
			Severity:       "critical",
		}
	} else {
		result = feedback.ResultFromEnvelope(env)
		verdict = engine.Evaluate(ctx, result)
	}

	rec, closeAudit := a.openRecorder()
	if rec != nil {
		err := rec.RecordFeedback(ctx, recorder.FeedbackEntry{
			Result:  result,
			Verdict: verdict,
			Elapsed: time.Since(start),
		})
		if err != nil {
			a.logger.Warn("feedback verdict not recorded", "error", err)
		}
	}
	closeAudit()

	if err := writeJSON(out, verdict); err != nil {
		a.logger.Error("failed to write verdict", "error", err)
	}
	if verdict.BlocksWorkflow {
		return cli.ExitBlock
	}
	return cli.ExitAllow
}
