package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicolangr/activeagent/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	providerName string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "activeagent",
	Short: "activeagent - generation provider client",
	Long: `activeagent sends embedding and completion requests to generation
providers described in a YAML configuration file.

Supported providers:
  - ollama: a local or remote Ollama server
  - openai: the OpenAI API
  - generic: any OpenAI-compatible server (LM Studio, vLLM, LocalAI)

Credentials come from the configuration, from secret references such as
${secret:openai-key}, or from OLLAMA_API_KEY / OLLAMA_ACCESS_TOKEN.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "", "provider to use (default: the only configured provider, or ollama)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, csv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
