// Package observability bundles the logging, metrics, and tracing plumbing
// shared by every module: a JSON slog logger, a Prometheus registry exposed on
// its own listen address, and an OTel tracer provider (OTLP/gRPC when an
// endpoint is configured, no-op otherwise).
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls what Init stands up.
type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	MetricsAddress  string  // empty disables the metrics listener
	OTLPEndpoint    string  // empty disables trace export
	OTLPInsecure    bool
	TraceSampleRate float64 // 0 defaults to 0.1
	LogLevel        string  // debug|info|warn|error, default info
}

// Provider holds the process-wide logger and tracer provider.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

// Registry holds the metric/trace handles modules pull from.
type Registry struct {
	Tracer           trace.Tracer
	Prometheus       *prometheus.Registry
	HTTPMetrics      *HTTPMetrics
	EventBusMetrics  *EventBusMetrics
	HandlerMetrics   *HandlerMetrics
	OperationMetrics OperationMetrics
}

// Observability is the composition root handed to every module.
type Observability struct {
	Provider Provider
	Registry Registry

	metricsServer *http.Server
	shutdownTrace func(context.Context) error
}

// Init builds the observability stack. The returned value must be shut down
// via Shutdown to flush spans and stop the metrics listener.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	logger := newLogger(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tp, shutdownTrace, err := newTracerProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)

	obs := &Observability{
		Provider: Provider{
			Logger:         logger,
			TracerProvider: tp,
		},
		Registry: Registry{
			Tracer:           tp.Tracer(cfg.ServiceName),
			Prometheus:       registry,
			HTTPMetrics:      NewHTTPMetrics(registry),
			EventBusMetrics:  NewEventBusMetrics(registry),
			HandlerMetrics:   NewHandlerMetrics(registry),
			OperationMetrics: NewOperationMetrics(registry),
		},
		shutdownTrace: shutdownTrace,
	}

	if cfg.MetricsAddress != "" {
		obs.metricsServer = startMetricsServer(cfg.MetricsAddress, registry, logger)
	}

	return obs, nil
}

// Shutdown flushes traces and stops the metrics listener.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.metricsServer != nil {
		if err := o.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if o.shutdownTrace != nil {
		if err := o.shutdownTrace(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newTracerProvider(ctx context.Context, cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	if cfg.OTLPEndpoint == "" {
		return noop.NewTracerProvider(), nil, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	sampleRate := cfg.TraceSampleRate
	if sampleRate <= 0 {
		sampleRate = 0.1
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	)
	return tp, tp.Shutdown, nil
}

func startMetricsServer(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", slog.Any("error", err))
		}
	}()

	return srv
}
