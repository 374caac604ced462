package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/cli"
	"github.com/personal-assistant/interpreter/pkg/providers"
)

var chatFlags struct {
	noStream bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent in the terminal",
	Long: `Start an interactive chat with the agent.

Replies are printed as they are generated unless --no-stream is given. Type
"exit" or "quit", or send end of input, to leave. While the model server is
unreachable the chat waits cli.retry_delay between attempts, up to
cli.max_retries (0 retries forever).

Examples:
  # Chat with streamed replies
  interpreter chat

  # Wait for complete replies
  interpreter chat --no-stream`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().BoolVar(&chatFlags.noStream, "no-stream", false, "print replies only when complete")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg); err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	out := cmd.OutOrStdout()
	styles := cli.NewStyles(out)
	policy := cli.RetryPolicy{
		Delay:      cfg.CLI.RetryDelay,
		MaxRetries: cfg.CLI.MaxRetries,
	}

	var a *agent.Agent
	err = cli.Retry(ctx, policy, providers.IsConnectionError,
		func(attempt int, err error) {
			msg := fmt.Sprintf("Model server at %s unreachable (%v); retrying in %s", cfg.Upstream.BaseURL, err, policy.Delay)
			fmt.Fprintln(out, styles.Notice.Render(msg))
		},
		func() error {
			var err error
			a, err = newAgent(ctx, cfg, provider, nil)
			return err
		},
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return cli.NewCommandError("chat", err)
	}

	fmt.Fprintln(out, styles.Notice.Render(fmt.Sprintf("Chatting with %s. Type \"exit\" to quit.", a.Model())))

	session := cli.NewSession(a, cmd.InOrStdin(), out, cli.SessionOptions{
		Stream: !chatFlags.noStream,
		Retry:  policy,
		Styles: styles,
	})
	if err := session.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return cli.NewCommandError("chat", err)
	}
	return nil
}

