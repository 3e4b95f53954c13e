package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicolangr/activeagent/pkg/cli"
	"github.com/nicolangr/activeagent/pkg/providerfactory"
	"github.com/nicolangr/activeagent/pkg/telemetry/health"
)

var providersFlags struct {
	check bool
}

var watchFlags struct {
	listen   string
	interval time.Duration
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	Long: `List the configured providers with their endpoint and health.

With --check every provider is checked once (GET {base_url}/models) before
the listing is printed; the command fails if any check fails.`,
	Args: cobra.NoArgs,
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

		status, failed := providerStatus(ctx, a.providers, providersFlags.check)
		if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), status); err != nil {
			return err
		}
		if failed > 0 {
			return cli.NewCommandError("providers", "", fmt.Errorf("%d provider(s) failed the health check", failed))
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check provider health periodically and serve metrics",
	Long: `Check every provider at a fixed interval and expose the results, with
request metrics, on a Prometheus endpoint until interrupted. The same
listener serves /healthz, /readyz and /version.

Requires telemetry.metrics.enabled in the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := cli.SetupSignalHandler(cmd.Context())
		defer stop()

		a, err := loadApp(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		return runWatch(ctx, a, watchFlags.listen, watchFlags.interval)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(watchCmd)

	providersCmd.Flags().BoolVar(&providersFlags.check, "check", false, "check every provider before listing")

	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", ":9090", "metrics listen address")
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", 30*time.Second, "health check interval")
}

// providerRow is one line of the providers listing.
type providerRow struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	BaseURL             string `json:"base_url"`
	Healthy             bool   `json:"healthy"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	Error               string `json:"error,omitempty"`
}

type providerRows []providerRow

func (r providerRows) Header() []string {
	return []string{"NAME", "TYPE", "BASE_URL", "HEALTHY", "ERROR"}
}

func (r providerRows) Rows() [][]string {
	rows := make([][]string, len(r))
	for i, p := range r {
		rows[i] = []string{p.Name, p.Type, p.BaseURL, strconv.FormatBool(p.Healthy), p.Error}
	}
	return rows
}

// providerStatus lists providers in name order, probing them first when
// check is set. It returns the number of failed checks.
func providerStatus(ctx context.Context, m *providerfactory.Manager, check bool) (providerRows, int) {
	var failures map[string]error
	if check {
		failures = m.CheckHealth(ctx)
	}

	summary := m.GetHealthSummary()
	names := m.GetProviderNames()
	rows := make(providerRows, 0, len(names))
	for _, name := range names {
		provider, err := m.GetProvider(name)
		if err != nil {
			continue
		}
		h := summary.Details[name]
		row := providerRow{
			Name:                name,
			Type:                provider.GetType(),
			BaseURL:             provider.GetConfig().BaseURL,
			Healthy:             h.IsHealthy,
			ConsecutiveFailures: h.ConsecutiveFailures,
		}
		if err := failures[name]; err != nil {
			row.Healthy = false
			row.Error = err.Error()
		}
		rows = append(rows, row)
	}
	return rows, len(failures)
}

// runWatch serves metrics on listen and checks providers every interval
// until ctx is done.
func runWatch(ctx context.Context, a *app, listen string, interval time.Duration) error {
	if a.metrics == nil {
		return cli.NewConfigError("telemetry.metrics.enabled", "metrics must be enabled to watch providers")
	}
	if interval <= 0 {
		return cli.NewConfigError("interval", "must be positive")
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())
	health.Register(mux, health.New(a.providers, 5*time.Second), health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("serving metrics", "address", listen, "path", a.cfg.Telemetry.Metrics.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	checkAll := func() {
		for name, err := range a.providers.CheckHealth(ctx) {
			slog.WarnContext(ctx, "provider health check failed", "provider", name, "error", err)
		}
	}
	checkAll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err, ok := <-serveErr:
			if ok {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			serveErr = nil
		case <-ticker.C:
			checkAll()
		}
	}
}
