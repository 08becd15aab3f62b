package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/gate"
)

var repairFlags struct {
	id     string
	scope  []string
	reason string
	format string
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Manage repair scope declarations",
	Long: `A repair declaration confines file writes to a list of paths while a
fix is in progress. While any declaration exists the newest one applies to
every write, on top of the sprint scope.

Repair documents (repair*.md, REPAIR*.md, fail_scope*.txt) whose
FAIL_SCOPE section lists "- file:" entries count as declarations too.
"repair clear" leaves them alone; delete or edit the document instead.`,
}

var repairDeclareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Declare a repair scope",
	Long: `Write a repair declaration. Scope entries are files or directories
(directories end in "/"), relative to the workspace root.

Examples:
  sprintgate repair declare --scope src/auth/ --scope go.mod --reason "fix token refresh"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return declareRepair(repairDir(cmd.Context(), a), time.Now(), cmd.OutOrStdout())
	},
}

var repairShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List repair declarations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return showRepairs(repairDir(cmd.Context(), a), workspaceBase(cmd.Context(), a), a.cfg.Gate.RepairDocuments, cmd.OutOrStdout())
	},
}

var repairClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every repair declaration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := gate.ClearRepairDeclarations(repairDir(cmd.Context(), a))
		if err != nil {
			return cli.NewCommandError("repair clear", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d repair declaration(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.AddCommand(repairDeclareCmd, repairShowCmd, repairClearCmd)

	repairDeclareCmd.Flags().StringVar(&repairFlags.id, "id", "", "declaration ID (default: generated)")
	repairDeclareCmd.Flags().StringSliceVar(&repairFlags.scope, "scope", nil, "allowed path (repeatable)")
	repairDeclareCmd.Flags().StringVar(&repairFlags.reason, "reason", "", "why the repair is needed")
	repairDeclareCmd.MarkFlagRequired("scope")

	repairShowCmd.Flags().StringVar(&repairFlags.format, "format", "text", "output format: text, json, yaml")
}

// repairDir locates the declaration directory. A relative directory is
// taken from the workspace base.
func repairDir(ctx context.Context, a *app) string {
	dir := a.cfg.Gate.RepairDir
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workspaceBase(ctx, a), dir)
}

// workspaceBase is the workspace root, or the working directory when the
// root cannot be found.
func workspaceBase(ctx context.Context, a *app) string {
	if ctx == nil {
		ctx = context.Background()
	}
	cwd, _ := os.Getwd()
	if r := a.resolver(cwd); r != nil {
		if root := r.CurrentRoot(ctx); root != "" {
			return root
		}
	}
	return cwd
}

func declareRepair(dir string, now time.Time, out io.Writer) error {
	var scope []string
	for _, s := range repairFlags.scope {
		if s = strings.TrimSpace(s); s != "" {
			scope = append(scope, s)
		}
	}
	if len(scope) == 0 {
		return fmt.Errorf("at least one --scope entry is required")
	}

	id := repairFlags.id
	if id == "" {
		id = "repair-" + uuid.NewString()[:8]
	}

	path, err := gate.WriteRepairDeclaration(dir, gate.RepairDeclaration{
		ID:         id,
		DeclaredAt: now.UTC(),
		Scope:      scope,
		Reason:     repairFlags.reason,
	})
	if err != nil {
		return cli.NewCommandError("repair declare", err)
	}
	fmt.Fprintf(out, "Declared repair %s (%s)\n", id, path)
	return nil
}

func showRepairs(dir, base string, documents []string, out io.Writer) error {
	format, err := cli.ParseOutputFormat(repairFlags.format)
	if err != nil {
		return err
	}

	decls, warnings := gate.LoadRepairScopes(dir, base, documents)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if format != cli.FormatText {
		if decls == nil {
			decls = []gate.RepairDeclaration{}
		}
		return cli.NewFormatter(format).FormatTo(out, decls)
	}

	if len(decls) == 0 {
		fmt.Fprintln(out, "No repair declarations; writes follow the sprint scope only.")
		return nil
	}
	for i, d := range decls {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %s\n", marker, d.ID, d.DeclaredAt.Local().Format(time.RFC3339), strings.Join(d.Scope, ", "))
		if d.Reason != "" {
			fmt.Fprintf(out, "    %s\n", d.Reason)
		}
	}
	return nil
}
