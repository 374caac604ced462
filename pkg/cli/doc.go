/*
Package cli provides the building blocks of the interpreter command line.

Interactive Chat:

Session runs the terminal chat loop. It keeps the conversation across turns,
adopts the summarized history when the agent condensed it, and waits for an
unreachable model server according to a RetryPolicy:

	s := cli.NewSession(a, os.Stdin, os.Stdout, cli.SessionOptions{
		Stream: true,
		Retry:  cli.RetryPolicy{Delay: 5 * time.Second},
		Styles: cli.NewStyles(os.Stdout),
	})
	if err := s.Run(ctx); err != nil {
		return err
	}

Output Formatting:

Command results are printed as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
