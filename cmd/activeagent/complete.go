package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolangr/activeagent/pkg/cli"
	"github.com/nicolangr/activeagent/pkg/providers"
	"github.com/nicolangr/activeagent/pkg/telemetry/tracing"
)

var completeFlags struct {
	model       string
	system      string
	maxTokens   int
	temperature float64
	stream      bool
}

var completeCmd = &cobra.Command{
	Use:   "complete [prompt...]",
	Short: "Send a chat completion request",
	Long: `Send a single-turn chat completion request and print the reply.

Examples:
  # Ask the configured model
  activeagent complete "Summarize the plot of Hamlet in one sentence"

  # Stream tokens as they arrive
  activeagent complete --stream --model gemma3:latest "Write a haiku"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}

		ctx, stop := cli.SetupSignalHandler(cmd.Context())
		defer stop()

		a, err := loadApp(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.providerFor(providerName)
		if err != nil {
			return err
		}

		req := buildCompletionRequest(strings.Join(args, " "))

		operation := providers.OperationCompletion
		if completeFlags.stream {
			operation = providers.OperationStream
		}
		ctx, span := a.startRequest(ctx, operation, name)
		defer span.End()
		tracing.SetProviderAttributes(span, name, req.Model)

		if completeFlags.stream {
			if err := runStream(ctx, a, name, req, cmd.OutOrStdout()); err != nil {
				tracing.SetError(span, err)
				return cli.NewCommandError("complete", name, err)
			}
			return nil
		}

		resp, err := a.providers.SendCompletion(ctx, name, req)
		if err != nil {
			tracing.SetError(span, err)
			return cli.NewCommandError("complete", name, err)
		}
		if format == cli.FormatText {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().StringVarP(&completeFlags.model, "model", "m", "", "model (default: the provider's configured model)")
	completeCmd.Flags().StringVar(&completeFlags.system, "system", "", "system instructions")
	completeCmd.Flags().IntVar(&completeFlags.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	completeCmd.Flags().Float64Var(&completeFlags.temperature, "temperature", 0, "sampling temperature")
	completeCmd.Flags().BoolVar(&completeFlags.stream, "stream", false, "stream the reply")
}

func buildCompletionRequest(prompt string) *providers.CompletionRequest {
	var messages []providers.Message
	if completeFlags.system != "" {
		messages = append(messages, providers.Message{Role: providers.RoleSystem, Content: completeFlags.system})
	}
	messages = append(messages, providers.Message{Role: providers.RoleUser, Content: prompt})

	return &providers.CompletionRequest{
		Model:       completeFlags.model,
		Messages:    messages,
		MaxTokens:   completeFlags.maxTokens,
		Temperature: completeFlags.temperature,
	}
}

// runStream writes deltas to w as they arrive.
func runStream(ctx context.Context, a *app, name string, req *providers.CompletionRequest, w io.Writer) error {
	provider, err := a.providers.GetProvider(name)
	if err != nil {
		return err
	}

	chunks, err := provider.StreamCompletion(ctx, req)
	if err != nil {
		return err
	}
	for chunk := range chunks {
		if chunk.Error != nil {
			return chunk.Error
		}
		if _, err := io.WriteString(w, chunk.Delta); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}
