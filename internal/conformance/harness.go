package conformance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/petstore-api-tests/internal/clients/http/petstore"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/fixtures"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

const tracerName = "github.com/Apurer/petstore-api-tests/internal/conformance"

// Harness carries what scenarios need to talk to the service under test.
type Harness struct {
	client *petstore.Client
	ids    *fixtures.IDGenerator
	logger *slog.Logger
	tracer trace.Tracer
	image  petstore.Upload
	now    func() time.Time
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithIDGenerator injects the generator used for fixture ids.
func WithIDGenerator(ids *fixtures.IDGenerator) HarnessOption {
	return func(h *Harness) {
		h.ids = ids
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithTracerProvider sets the provider used for scenario spans.
func WithTracerProvider(tp trace.TracerProvider) HarnessOption {
	return func(h *Harness) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithImage overrides the image uploaded by the upload-image scenario.
func WithImage(upload petstore.Upload) HarnessOption {
	return func(h *Harness) {
		h.image = upload
	}
}

// WithClock overrides the clock used to derive the missing pet id.
func WithClock(now func() time.Time) HarnessOption {
	return func(h *Harness) {
		h.now = now
	}
}

// NewHarness builds a harness around client.
func NewHarness(client *petstore.Client, opts ...HarnessOption) *Harness {
	h := &Harness{
		client: client,
		image: petstore.Upload{
			Filename: fixtures.PetImageFilename,
			Content:  fixtures.PetImage(),
			Metadata: fixtures.PetImageMetadata,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.ids == nil {
		h.ids = fixtures.NewRandomIDGenerator()
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.tracer == nil {
		h.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return h
}

func (h *Harness) Client() *petstore.Client { return h.client }

func (h *Harness) IDs() *fixtures.IDGenerator { return h.ids }

func (h *Harness) Logger() *slog.Logger { return h.logger }

// transport turns a client error into a step failure.
func transport(step string, err error) error {
	return &Failure{Step: step, Err: err}
}

func (h *Harness) expectStatus(ctx context.Context, step string, res *petstore.Response, want httpstatus.Status) error {
	if err := res.ExpectStatus(want); err != nil {
		var actual any = res.StatusCode
		if s, ok := httpstatus.Lookup(res.StatusCode); ok {
			actual = s
		}
		return &Failure{Step: step, Field: "status", Expected: want, Actual: actual, Status: want, Err: err}
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "status matched",
		slog.String("step", step),
		slog.String("status", want.String()),
		slog.String("trace_id", res.TraceID),
	)
	return nil
}

func expectEqual(step, field string, want, got any) error {
	if diff := cmp.Diff(want, got); diff != "" {
		return &Failure{Step: step, Field: field, Expected: want, Actual: got, Diff: diff}
	}
	return nil
}

// expectEcho checks the id, name and status a service echoed back.
func expectEcho(step string, want, got *domain.Pet) error {
	if err := expectEqual(step, "id", want.ID, got.ID); err != nil {
		return err
	}
	if err := expectEqual(step, "name", want.Name, got.Name); err != nil {
		return err
	}
	return expectEqual(step, "status", want.Status, got.Status)
}

// createPet posts pet, expects 200 and returns the id the service echoed. The
// fixture id is used only when the body carries no id at all.
func (h *Harness) createPet(ctx context.Context, pet *domain.Pet) (int64, error) {
	const step = "create pet"
	res, err := h.client.AddPet(ctx, pet)
	if err != nil {
		return 0, transport(step, err)
	}
	if err := h.expectStatus(ctx, step, res, httpstatus.OK); err != nil {
		return 0, err
	}
	id, err := res.PetID()
	switch {
	case errors.Is(err, petstore.ErrMissingID):
		h.logger.LogAttrs(ctx, slog.LevelWarn, "create response carried no id, using fixture id",
			slog.Int64("pet.id", pet.ID))
		return pet.ID, nil
	case err != nil:
		return 0, &Failure{Step: step, Err: err}
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "pet created", slog.Int64("pet.id", id))
	return id, nil
}
