package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/randalmurphal/flowcanvas/internal/server"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/config"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/portsync"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Starts an empty graph and serves it over HTTP until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := serveSettings(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(s)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s, logger)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().String("endpoint", "", "Parser service URL")
	cmd.Flags().Duration("quiet-period", 0, "Delay before template edits update ports (default 180ms)")
	return cmd
}

// serveSettings applies serve flags on top of the loaded settings.
func serveSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return config.Settings{}, err
	}
	if cmd.Flags().Changed("addr") {
		s.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("endpoint") {
		s.SubmitEndpoint, _ = cmd.Flags().GetString("endpoint")
	}
	if cmd.Flags().Changed("quiet-period") {
		s.QuietPeriod, _ = cmd.Flags().GetDuration("quiet-period")
	}
	return s, s.Validate()
}

// serve runs the API until ctx ends, then shuts down gracefully.
func serve(ctx context.Context, s config.Settings, logger *slog.Logger) error {
	mp := sdkmetric.NewMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics := observability.NewMetricsRecorderFor(mp)

	spans, shutdownTracing := newTracing(logger)
	defer func() { _ = shutdownTracing(context.Background()) }()

	store := flowcanvas.NewStore(flowcanvas.WithLogger(logger), flowcanvas.WithMetrics(metrics))
	ps := portsync.New(store,
		portsync.WithQuietPeriod(s.QuietPeriod),
		portsync.WithLogger(logger),
		portsync.WithMetrics(metrics),
		portsync.WithSpans(spans),
	)
	defer ps.Close()

	client := submit.NewClient(s.SubmitEndpoint,
		submit.WithTimeout(s.SubmitTimeout),
		submit.WithLogger(logger),
		submit.WithMetrics(metrics),
		submit.WithSpans(spans),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := server.New(store,
		server.WithSynchronizer(ps),
		server.WithSubmitClient(client),
		server.WithEventBuffer(s.EventBuffer),
		server.WithLogger(logger),
		server.WithRegistry(reg),
	)
	defer api.Close()

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", s.Addr, "endpoint", s.SubmitEndpoint, "quiet_period", s.QuietPeriod)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown started")
		// Event streams only end when the API is closed.
		api.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown incomplete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}
		logger.Info("server stopped")
		return nil
	}
}

// newTracing builds a span manager whose spans go to logger: debug for
// successful spans, warn for failed ones. shutdown flushes pending spans.
func newTracing(logger *slog.Logger) (spans observability.SpanManager, shutdown func(context.Context) error) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(observability.NewLogExporter(logger)))
	return observability.NewSpanManagerFor(tp), tp.Shutdown
}
