/*
Package cli provides helpers shared by the headsup commands.

Output Formatting:

Reporting commands such as `headsup journal list` accept --format text,
json or csv:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)

Text and CSV output need a Table; JSON encodes any value.

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

Errors:

ConfigError and CommandError carry the failing path or command. Every fatal
error exits with ExitFailure.
*/
package cli
