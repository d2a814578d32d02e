package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Propagator     propagation.TextMapPropagator
}

type settings struct {
	logWriter   io.Writer
	logLevel    slog.Level
	exporter    sdktrace.SpanExporter
	environment string
}

// Option tweaks Init.
type Option func(*settings)

// WithLogWriter sends the JSON log stream somewhere other than stdout.
func WithLogWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.logWriter = w
		}
	}
}

// WithLogLevel sets the minimum level of the process logger.
func WithLogLevel(level slog.Level) Option {
	return func(s *settings) {
		s.logLevel = level
	}
}

// WithEnvironment sets deployment.environment. ENVIRONMENT is used when unset.
func WithEnvironment(name string) Option {
	return func(s *settings) {
		if name = strings.TrimSpace(name); name != "" {
			s.environment = name
		}
	}
}

// WithSpanExporter bypasses the OTLP/stdout exporter selection.
func WithSpanExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *settings) {
		s.exporter = exporter
	}
}

// Init configures slog, OpenTelemetry tracing, and meters for the process.
// It returns initialized instruments plus a shutdown function that should be
// invoked on exit to flush pending spans/metrics.
func Init(ctx context.Context, serviceName string, opts ...Option) (*Instruments, func(context.Context) error, error) {
	cfg := settings{
		logWriter:   os.Stdout,
		logLevel:    slog.LevelInfo,
		environment: envOrDefault("ENVIRONMENT", "local"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := newLogger(cfg.logWriter, cfg.logLevel)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", cfg.environment),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	spanExporter := cfg.exporter
	if spanExporter == nil {
		spanExporter, err = newSpanExporter(ctx, logger, cfg.logWriter)
		if err != nil {
			return nil, nil, err
		}
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter),
	)
	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagator)

	meterProvider := newMeterProvider(res)
	otel.SetMeterProvider(meterProvider)

	instruments := &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Propagator:     propagator,
	}

	shutdown := func(ctx context.Context) error {
		var shutdownErr error
		if meterProvider != nil {
			shutdownErr = errors.Join(shutdownErr, meterProvider.Shutdown(ctx))
		}
		if tracerProvider != nil {
			shutdownErr = errors.Join(shutdownErr, tracerProvider.Shutdown(ctx))
		}
		return shutdownErr
	}

	return instruments, shutdown, nil
}

// TestInstruments are in-memory instruments whose spans and metrics can be inspected.
type TestInstruments struct {
	*Instruments
	Spans   *tracetest.SpanRecorder
	Metrics *sdkmetric.ManualReader
}

// NewTestInstruments builds instruments that record spans and metrics in memory and
// log to w. Nothing is registered globally.
func NewTestInstruments(w io.Writer) *TestInstruments {
	if w == nil {
		w = io.Discard
	}
	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	return &TestInstruments{
		Instruments: &Instruments{
			Logger:         slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})),
			TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)),
			MeterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
			Propagator:     propagation.TraceContext{},
		},
		Spans:   recorder,
		Metrics: reader,
	}
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: true})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func newSpanExporter(ctx context.Context, logger *slog.Logger, fallback io.Writer) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	opts := []otlptracehttp.Option{}
	if endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	if logger != nil {
		logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.String("error", err.Error()))
	}
	return stdouttrace.New(stdouttrace.WithWriter(fallback), stdouttrace.WithPrettyPrint())
}

func newMeterProvider(res *resource.Resource) *sdkmetric.MeterProvider {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
