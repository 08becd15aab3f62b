/*
Package cli provides command-line helpers for the sprintgate command.

Output Formatting:

Informational commands print text, JSON or YAML:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

The hook commands report their verdict through the exit status as well as
stdout: ExitAllow when the action may proceed, ExitBlock when it must not.
Commands return an *ExitCodeError after writing their verdict and main
turns it into the process exit status.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
