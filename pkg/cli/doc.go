/*
Package cli provides command-line helpers shared by the activeagent command.

Output Formatting:

Command results are rendered as text, JSON or CSV. Tabular results
implement Table so every format can render them:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

Batch commands report per-item progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(len(inputs))
	for _, in := range inputs {
		err := embed(in)
		progress.Done(err)
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
