/*
Package cli provides command-line helpers shared by the chatrelay commands.

Output Formatting:

Read-only record commands print either aligned text columns or JSON:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, records)

Progress Reporting:

Record export reports its paging progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr, "Exporting")
	progress.Start(total)
	progress.Update(fetched)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

SIGHUP is delivered separately through NotifyReload and triggers a
configuration reload in the run command.
*/
package cli
