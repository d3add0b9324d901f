package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vitalvas/deeplink/deeplink"
	"github.com/vitalvas/deeplink/linkhandlers"
	"github.com/vitalvas/deeplink/resolver"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		metrics  bool
		hostname string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP resolver",
		Long: `Run an HTTP server that redirects deep links to their targets.

Endpoints:
  GET /healthz            liveness probe
  GET /resolve?url=<url>  JSON resolution of a URL
  GET /metrics            Prometheus metrics (with --metrics)

Any other request is resolved by its own URL and redirected to the
rendered target.

Examples:
  deeplink serve --addr :8080 --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := opts.logger(cmd)
			if err != nil {
				return err
			}

			dispatchOpts := []deeplink.Option{
				deeplink.WithMiddleware(
					linkhandlers.RecoveryMiddleware(linkhandlers.RecoveryConfig{
						LogFunc: func(ctx context.Context, m *deeplink.Match, v any) {
							logger.ErrorContext(ctx, "deeplink handler panic",
								"template", m.Registration.String(),
								"panic", v)
						},
					}),
					linkhandlers.DispatchIDMiddleware(linkhandlers.DispatchIDConfig{
						GenerateFunc:  linkhandlers.GenerateUUIDv7,
						TrustIncoming: true,
					}),
					linkhandlers.LoggingMiddleware(linkhandlers.LoggingConfig{Logger: logger}),
					linkhandlers.TracingMiddleware(linkhandlers.TracingConfig{}),
				),
			}

			cfg := resolver.Config{Logger: logger, Hostname: hostname}

			if metrics {
				registry := prometheus.NewRegistry()
				registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				dispatchOpts = append(dispatchOpts,
					linkhandlers.NewMetrics(linkhandlers.WithRegistry(registry)).Options()...)
				cfg.Gatherer = registry
			}

			table, err := opts.table(cmd, dispatchOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return resolver.ListenAndServe(ctx, addr, resolver.New(table, cfg), resolver.ServeConfig{Logger: logger})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics on /metrics")
	cmd.Flags().StringVar(&hostname, "hostname", "", "Value of the X-Server-Hostname response header")

	return cmd
}
