package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "interpreter",
	Short: "Interpreter - conversational agent for local model servers",
	Long: `Interpreter is a conversational agent for OpenAI-compatible model servers
such as vLLM or llama.cpp.

It resolves the model the server hosts, estimates the prompt tokens of every
conversation, and condenses long histories into a summary before they exceed
the configured budget. The agent is available as:
  - an HTTP API with JSON and streamed replies (serve)
  - an interactive terminal chat (chat)`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path (YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}
