package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nicolangr/activeagent/pkg/cli"
	"github.com/nicolangr/activeagent/pkg/providers"
	"github.com/nicolangr/activeagent/pkg/telemetry/tracing"
)

var embedFlags struct {
	model string
	file  string
}

var embedCmd = &cobra.Command{
	Use:   "embed [text...]",
	Short: "Compute embeddings",
	Long: `Compute an embedding vector for the given text, or for every non-empty
line of --file. Each input is sent as its own request.

Examples:
  # Embed a sentence with the default embedding model
  activeagent embed "the quick brown fox"

  # Use a specific model on a named provider
  activeagent embed --provider gpu-box --model mxbai-embed-large "hello"

  # Embed a file, one vector per line, as CSV
  activeagent embed --file inputs.txt --output csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := embedInputs(args, embedFlags.file)
		if err != nil {
			return err
		}
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

		var progress cli.ProgressReporter
		if len(inputs) > 1 {
			progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		}

		results, err := runEmbed(ctx, a, name, embedFlags.model, inputs, progress)
		if err != nil {
			return cli.NewCommandError("embed", name, err)
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedFlags.model, "model", "m", "", "embedding model (default: the provider's embedding model)")
	embedCmd.Flags().StringVarP(&embedFlags.file, "file", "f", "", "read inputs from a file, one per line (- for stdin)")
}

// embeddingResult is one embedded input.
type embeddingResult struct {
	ID         string    `json:"id"`
	Input      string    `json:"input"`
	Dimensions int       `json:"dimensions"`
	Embedding  []float64 `json:"embedding"`
}

type embeddingResults []embeddingResult

func (r embeddingResults) Header() []string {
	return []string{"INPUT", "DIMENSIONS", "EMBEDDING"}
}

func (r embeddingResults) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		values := make([]string, len(res.Embedding))
		for j, v := range res.Embedding {
			values[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows[i] = []string{res.Input, strconv.Itoa(res.Dimensions), strings.Join(values, " ")}
	}
	return rows
}

// runEmbed embeds every input in order and stops at the first failure.
func runEmbed(ctx context.Context, a *app, provider, model string, inputs []string, progress cli.ProgressReporter) (embeddingResults, error) {
	if progress != nil {
		progress.Start(len(inputs))
		defer progress.Finish()
	}

	results := make(embeddingResults, 0, len(inputs))
	for _, input := range inputs {
		reqCtx, span := a.startRequest(ctx, providers.OperationEmbedding, provider)
		prompt := &providers.Prompt{
			Message: providers.Message{Role: providers.RoleUser, Content: input},
		}

		resp, err := a.providers.Embed(reqCtx, provider, prompt, providers.EmbeddingRequest{Model: model})
		if progress != nil {
			progress.Done(err)
		}
		if err != nil {
			tracing.SetError(span, err)
			span.End()
			return nil, err
		}
		span.SetAttributes(attribute.Int(tracing.AttrEmbeddingDimensions, len(resp.Message.Embedding)))
		span.End()

		results = append(results, embeddingResult{
			ID:         resp.ID,
			Input:      input,
			Dimensions: len(resp.Message.Embedding),
			Embedding:  resp.Message.Embedding,
		})
	}
	return results, nil
}

// embedInputs returns the positional text as one input, or the non-empty
// lines of file.
func embedInputs(args []string, file string) ([]string, error) {
	if file == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return nil, cli.NewConfigError("text", "nothing to embed: pass text or --file")
		}
		return []string{text}, nil
	}
	if len(args) > 0 {
		return nil, cli.NewConfigError("file", "--file cannot be combined with text arguments")
	}

	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return readLines(r)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inputs: %w", err)
	}
	if len(lines) == 0 {
		return nil, cli.NewConfigError("file", "input file has no non-empty lines")
	}
	return lines, nil
}
