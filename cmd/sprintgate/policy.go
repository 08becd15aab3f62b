package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/policy"
)

var policyFlags struct {
	format string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Validate and inspect the policy document",
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a policy document",
	Long: `Parse and validate a policy document without applying it. The path
defaults to the configured policy path.

Examples:
  sprintgate policy validate
  sprintgate policy validate .sprintgate/policy.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		path := a.cfg.Policy.Path
		if len(args) == 1 {
			path = args[0]
		}
		return validatePolicy(path, cmd.OutOrStdout())
	},
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective policy",
	Long: `Print the policy in force: the configured document merged over the
built-in defaults, or the defaults alone when no document exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return showPolicy(a.cfg.Policy.Path, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd, policyShowCmd)

	policyShowCmd.Flags().StringVar(&policyFlags.format, "format", "yaml", "output format: yaml, json")
}

func validatePolicy(path string, out io.Writer) error {
	rules, err := policy.Load(path)
	if err != nil {
		var verr *policy.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "✗ %s: %d problem(s)\n", path, len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s\n", fe.Error())
			}
		} else {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
		}
		return cli.NewCommandError("policy validate", err)
	}

	if rules.Source == "" {
		fmt.Fprintf(out, "✓ %s not found; built-in policy applies\n", path)
		return nil
	}
	fmt.Fprintf(out, "✓ %s is valid (digest %s)\n", path, rules.Digest)
	return nil
}

func showPolicy(path string, out io.Writer) error {
	format, err := cli.ParseOutputFormat(policyFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatText {
		format = cli.FormatYAML
	}

	rules, err := policy.Load(path)
	if err != nil {
		return cli.NewCommandError("policy show", err)
	}
	return cli.NewFormatter(format).FormatTo(out, rules.Document())
}
