package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/personal-assistant/interpreter/pkg/cli"
	"github.com/personal-assistant/interpreter/pkg/processing"
	"github.com/personal-assistant/interpreter/pkg/processing/tokens"
	"github.com/personal-assistant/interpreter/pkg/providers"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// DefaultTokensModel selects the cl100k_base encoding.
const DefaultTokensModel = "gpt-3.5-turbo"

var tokensFlags struct {
	model         string
	format        string
	contextWindow int
}

// tokenizerFactory is replaced in tests to avoid loading BPE files.
var tokenizerFactory tokens.TokenizerFactory

var tokensCmd = &cobra.Command{
	Use:   "tokens [file|-]",
	Short: "Estimate the prompt tokens of a conversation",
	Long: `Estimate the prompt tokens of a conversation the way the agent does
before deciding whether to summarize it.

The input is a JSON array of messages, or a chat request body with a
"messages" field, read from the file argument or from standard input when
the argument is "-" or missing. The model selects the tokenizer; unknown
models use cl100k_base.

Examples:
  # Estimate a saved conversation
  interpreter tokens conversation.json

  # Relate the estimate to a 8192 token context window, as JSON
  cat conversation.json | interpreter tokens --context-window 8192 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVarP(&tokensFlags.model, "model", "m", "", "model whose tokenizer to use (default: upstream.model, else "+DefaultTokensModel+")")
	tokensCmd.Flags().StringVarP(&tokensFlags.format, "format", "f", "text", "output format (text, json)")
	tokensCmd.Flags().IntVar(&tokensFlags.contextWindow, "context-window", 0, "context window size for the usage percentage")
}

// tokenReport renders an analysis for the text format.
type tokenReport struct {
	*processing.Analysis
}

func (r tokenReport) String() string {
	c := r.Conversation
	var b strings.Builder
	fmt.Fprintf(&b, "Model:            %s\n", r.Model)
	fmt.Fprintf(&b, "Messages:         %d (%d turns)\n", c.MessageCount, c.TurnCount)
	fmt.Fprintf(&b, "Estimated tokens: %d\n", r.EstimatedTokens)
	fmt.Fprintf(&b, "Average message:  %d tokens\n", c.AverageMessageLength)
	if c.ContextWindowLimit > 0 {
		fmt.Fprintf(&b, "Context window:   %.1f%% of %d", c.ContextWindowPercent*100, c.ContextWindowLimit)
		if c.NearLimit {
			b.WriteString(" (near limit)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runTokens(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(tokensFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model := tokensFlags.model
	if model == "" {
		model = cfg.Upstream.Model
	}
	if model == "" {
		model = DefaultTokensModel
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return cli.NewCommandError("tokens", err)
		}
		defer f.Close()
		in = f
	}

	messages, err := readMessages(in)
	if err != nil {
		return cli.NewCommandError("tokens", err)
	}

	processor := processing.NewProcessor(tokens.NewEstimator(tokenizerFactory), cfg.Agent.ContextWarnRatio)
	analysis := processor.Analyze(messages, model, tokensFlags.contextWindow)

	var report interface{} = analysis
	if format == cli.FormatText {
		report = tokenReport{Analysis: analysis}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
}

// readMessages decodes a JSON array of messages or an object with a
// "messages" field.
func readMessages(r io.Reader) ([]providers.Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data = bytes.TrimSpace(data)

	var req types.ChatRequest
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &req.Messages)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req.ProviderMessages(), nil
}
