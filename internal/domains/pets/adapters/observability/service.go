package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	petsapp "github.com/Apurer/petstore-api-tests/internal/domains/pets/application"
	pettypes "github.com/Apurer/petstore-api-tests/internal/domains/pets/application/types"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/observability"

// Outcomes a decorated call is classified into. A conformance run drives the
// stub through each of them: delete-pet expects ok and then not_found.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

const (
	operationsMetric = "pets.service.operations"
	durationMetric   = "pets.service.duration"
	imageBytesMetric = "pets.service.image_bytes"
)

// Service decorates the stub's pet service with spans, outcome logs and
// per-operation outcome counters.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) AddPet(ctx context.Context, input pettypes.AddPetInput) (*pettypes.PetProjection, error) {
	return observe(ctx, s, "AddPet", petID(input.ID), func(ctx context.Context) (*pettypes.PetProjection, error) {
		return annotate(ctx)(s.inner.AddPet(ctx, input))
	})
}

func (s *Service) UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error) {
	return observe(ctx, s, "UpdatePet", petID(input.ID), func(ctx context.Context) (*pettypes.PetProjection, error) {
		return annotate(ctx)(s.inner.UpdatePet(ctx, input))
	})
}

func (s *Service) UpdatePetWithForm(ctx context.Context, input pettypes.UpdatePetWithFormInput) (*pettypes.PetProjection, error) {
	return observe(ctx, s, "UpdatePetWithForm", petID(input.ID), func(ctx context.Context) (*pettypes.PetProjection, error) {
		return annotate(ctx)(s.inner.UpdatePetWithForm(ctx, input))
	})
}

func (s *Service) FindByStatus(ctx context.Context, input pettypes.FindPetsByStatusInput) ([]*pettypes.PetProjection, error) {
	attrs := []attribute.KeyValue{attribute.StringSlice("pet.statuses.requested", input.Statuses)}
	return observe(ctx, s, "FindByStatus", attrs, func(ctx context.Context) ([]*pettypes.PetProjection, error) {
		result, err := s.inner.FindByStatus(ctx, input)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("pet.result.count", len(result)))
		return result, err
	})
}

func (s *Service) GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error) {
	return observe(ctx, s, "GetByID", petID(input.ID), func(ctx context.Context) (*pettypes.PetProjection, error) {
		return annotate(ctx)(s.inner.GetByID(ctx, input))
	})
}

func (s *Service) Delete(ctx context.Context, input pettypes.PetIdentifier) error {
	_, err := observe(ctx, s, "Delete", petID(input.ID), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.inner.Delete(ctx, input)
	})
	return err
}

func (s *Service) UploadImage(ctx context.Context, input pettypes.UploadImageInput) (*ports.UploadImageResult, error) {
	attrs := append(petID(input.ID),
		attribute.String("asset.filename", input.Filename),
		attribute.Int64("asset.bytes", input.Size),
	)
	if input.Metadata != "" {
		attrs = append(attrs, attribute.String("asset.metadata", input.Metadata))
	}
	return observe(ctx, s, "UploadImage", attrs, func(ctx context.Context) (*ports.UploadImageResult, error) {
		result, err := s.inner.UploadImage(ctx, input)
		if err == nil {
			s.metrics.addImageBytes(ctx, input.Size)
		}
		return result, err
	})
}

// observe runs fn inside a span named after op, then logs and counts the call
// under its outcome. Missing pets are logged at warn and leave the span status
// unset.
func observe[T any](ctx context.Context, s *Service, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "Service."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	outcome := classify(err)
	s.metrics.record(ctx, op, outcome, time.Since(start))

	logAttrs := make([]slog.Attr, 0, len(attrs)+3)
	logAttrs = append(logAttrs, slog.String("operation", op), slog.String("outcome", outcome))
	for _, kv := range attrs {
		logAttrs = append(logAttrs, slog.Any(string(kv.Key), kv.Value.AsInterface()))
	}
	if err != nil {
		logAttrs = append(logAttrs, slog.String("error", err.Error()))
	}

	switch outcome {
	case OutcomeOK:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "pet operation completed", logAttrs...)
	case OutcomeNotFound:
		span.SetAttributes(attribute.Bool("pet.not_found", true))
		s.logger.LogAttrs(ctx, slog.LevelWarn, "pet not found", logAttrs...)
	case OutcomeInvalid:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelWarn, "pet operation rejected", logAttrs...)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "pet operation failed", logAttrs...)
	}
	return result, err
}

// annotate tags the current span with the status of the pet a call returned.
func annotate(ctx context.Context) func(*pettypes.PetProjection, error) (*pettypes.PetProjection, error) {
	return func(result *pettypes.PetProjection, err error) (*pettypes.PetProjection, error) {
		if err == nil && result != nil && result.Pet != nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("pet.status", string(result.Pet.Status)))
		}
		return result, err
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ports.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, petsapp.ErrInvalidInput):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func petID(id int64) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int64("pet.id", id)}
}

type serviceMetrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
	imageBytes metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	operations, _ := m.Int64Counter(operationsMetric, metric.WithDescription("Pet service calls by operation and outcome"))
	duration, _ := m.Float64Histogram(durationMetric, metric.WithDescription("Pet service call latency"), metric.WithUnit("s"))
	imageBytes, _ := m.Int64Counter(imageBytesMetric, metric.WithDescription("Bytes of uploaded images"), metric.WithUnit("By"))
	return serviceMetrics{operations: operations, duration: duration, imageBytes: imageBytes}
}

func (m serviceMetrics) record(ctx context.Context, op, outcome string, elapsed time.Duration) {
	if m.operations != nil {
		m.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("pet.operation", op),
			attribute.String("pet.outcome", outcome),
		))
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("pet.operation", op)))
	}
}

func (m serviceMetrics) addImageBytes(ctx context.Context, size int64) {
	if m.imageBytes != nil {
		m.imageBytes.Add(ctx, size)
	}
}

var _ ports.Service = (*Service)(nil)
