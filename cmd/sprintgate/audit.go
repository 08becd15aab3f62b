package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/audit/export"
	"keelson-hq/sprintgate/pkg/audit/retention"
	"keelson-hq/sprintgate/pkg/cli"
)

var auditFlags struct {
	since      time.Duration
	timeRange  string
	phase      string
	session    string
	tool       string
	sprint     string
	check      string
	status     string
	denied     bool
	limit      int
	exportMax  int
	offset     int
	format     string
	exportAs   string
	output     string
	days       int
	maxRecords int64
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query, export and prune the verdict audit trail",
	Long: `Every pre and post verdict is recorded in the audit trail. The audit
commands read it back for review and keep it within its retention policy.

Subcommands:
  query   - List records matching filters
  export  - Write records as JSON, JSON lines or CSV
  prune   - Apply the retention policy now`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with filters, newest first.

Time Range Format:
  --since takes a duration ("24h"); --time-range takes an RFC3339
  interval "start/end".

Examples:
  # Denials in the last day
  sprintgate audit query --denied --since 24h

  # Everything one sprint did, as JSON
  sprintgate audit query --sprint sprint-7 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuditStorage(func(a *app, store audit.Storage) error {
			return queryAudit(cmd.Context(), store, cmd.OutOrStdout())
		})
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit records",
	Long: `Export audit records matching the filters.

Examples:
  sprintgate audit export --format csv -o audit.csv
  sprintgate audit export --format jsonl --since 168h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuditStorage(func(a *app, store audit.Storage) error {
			out := cmd.OutOrStdout()
			if auditFlags.output != "" {
				f, err := os.Create(auditFlags.output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return exportAudit(cmd.Context(), store, out)
		})
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete records older than the retention period and, when a record cap
is configured, the oldest records beyond it. Flags override the configured
retention for this run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuditStorage(func(a *app, store audit.Storage) error {
			cfg := retention.ConfigFrom(a.cfg.Audit.Retention)
			if cmd.Flags().Changed("days") {
				cfg.RetentionDays = auditFlags.days
			}
			if cmd.Flags().Changed("max-records") {
				cfg.MaxRecords = auditFlags.maxRecords
			}
			return pruneAudit(cmd.Context(), retention.NewPruner(store, cfg, a.logger, a.collector.Audit()), cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditExportCmd, auditPruneCmd)

	for _, c := range []*cobra.Command{auditQueryCmd, auditExportCmd} {
		c.Flags().DurationVar(&auditFlags.since, "since", 0, "only records newer than this duration")
		c.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		c.Flags().StringVar(&auditFlags.phase, "phase", "", "filter by phase (pre, post)")
		c.Flags().StringVar(&auditFlags.session, "session", "", "filter by agent session ID")
		c.Flags().StringVar(&auditFlags.tool, "tool", "", "filter by tool")
		c.Flags().StringVar(&auditFlags.sprint, "sprint", "", "filter by sprint ID")
		c.Flags().StringVar(&auditFlags.check, "check", "", "filter by deciding check")
		c.Flags().StringVar(&auditFlags.status, "status", "", "filter by feedback status")
		c.Flags().BoolVar(&auditFlags.denied, "denied", false, "only denied or blocking verdicts")
		c.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	}
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", audit.DefaultQueryLimit, "max results")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, yaml")

	auditExportCmd.Flags().IntVar(&auditFlags.exportMax, "limit", 10000, "max records")
	auditExportCmd.Flags().StringVar(&auditFlags.exportAs, "format", "json", "export format: "+strings.Join(export.Formats, ", "))
	auditExportCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", 0, "retention period in days (0 keeps forever)")
	auditPruneCmd.Flags().Int64Var(&auditFlags.maxRecords, "max-records", 0, "maximum records to keep (0 means no cap)")
}

// withAuditStorage opens the configured audit backend for fn.
func withAuditStorage(fn func(a *app, store audit.Storage) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(a, store)
}

// buildAuditQuery turns the filter flags into a query.
func buildAuditQuery(now time.Time, limit int) (*audit.Query, error) {
	q := &audit.Query{
		Phase:     auditFlags.phase,
		SessionID: auditFlags.session,
		Tool:      auditFlags.tool,
		SprintID:  auditFlags.sprint,
		Check:     auditFlags.check,
		Status:    auditFlags.status,
		Limit:     limit,
		Offset:    auditFlags.offset,
	}

	if auditFlags.since > 0 {
		start := now.Add(-auditFlags.since)
		q.StartTime = &start
	}
	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		q.StartTime, q.EndTime = &start, &end
	}
	if auditFlags.denied {
		allowed := false
		q.Allowed = &allowed
	}
	return q, nil
}

func queryAudit(ctx context.Context, store audit.Storage, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := cli.ParseOutputFormat(auditFlags.format)
	if err != nil {
		return err
	}
	q, err := buildAuditQuery(time.Now(), auditFlags.limit)
	if err != nil {
		return err
	}

	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit query", fmt.Errorf("query failed: %w", err))
	}

	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(out, records)
	}
	return writeAuditText(out, records)
}

func writeAuditText(out io.Writer, records []*audit.Record) error {
	fmt.Fprintf(out, "Total records: %d\n", len(records))
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s  %-4s  %-6s  %s\n", r.Timestamp.Local().Format(time.RFC3339), r.Phase, r.Outcome(), r.Tool)
		fmt.Fprintf(out, "  Decision: %s\n", r.DecisionID)
		if r.Check != "" {
			fmt.Fprintf(out, "  Check:    %s\n", r.Check)
		}
		if r.Severity != "" {
			fmt.Fprintf(out, "  Severity: %s\n", r.Severity)
		}
		if r.Command != "" {
			fmt.Fprintf(out, "  Command:  %s\n", r.Command)
		}
		if r.FilePath != "" {
			fmt.Fprintf(out, "  File:     %s\n", r.FilePath)
		}
		if r.SprintID != "" {
			fmt.Fprintf(out, "  Sprint:   %s\n", r.SprintID)
		}
		fmt.Fprintf(out, "  Reason:   %s\n", r.Reason)
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "  Warning:  %s\n", w)
		}
	}
	return nil
}

func exportAudit(ctx context.Context, store audit.Storage, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	exporter, err := export.New(auditFlags.exportAs)
	if err != nil {
		return err
	}
	q, err := buildAuditQuery(time.Now(), auditFlags.exportMax)
	if err != nil {
		return err
	}

	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit export", fmt.Errorf("query failed: %w", err))
	}
	return exporter.Export(ctx, records, out)
}

func pruneAudit(ctx context.Context, p *retention.Pruner, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deleted, err := p.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Fprintf(out, "Pruned %d audit record(s)\n", deleted)
	return nil
}
