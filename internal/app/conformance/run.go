// Package conformance wires configuration, observability and the petstore client
// into a conformance run.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/petstore-api-tests/internal/clients/http/petstore"
	suite "github.com/Apurer/petstore-api-tests/internal/conformance"
	"github.com/Apurer/petstore-api-tests/internal/fixtures"
	platformobservability "github.com/Apurer/petstore-api-tests/internal/platform/observability"
)

const serviceName = "petstore-conformance"

// ErrScenariosFailed is returned by Run when at least one scenario did not pass.
var ErrScenariosFailed = errors.New("conformance scenarios failed")

type runSettings struct {
	logWriter io.Writer
	obsOpts   []platformobservability.Option
}

// RunOption tweaks Run.
type RunOption func(*runSettings)

// WithLogWriter redirects the JSON log stream. Logs go to stderr by default so
// stdout stays free for the report.
func WithLogWriter(w io.Writer) RunOption {
	return func(s *runSettings) {
		if w != nil {
			s.logWriter = w
		}
	}
}

// WithObservability passes extra options to observability.Init.
func WithObservability(opts ...platformobservability.Option) RunOption {
	return func(s *runSettings) {
		s.obsOpts = append(s.obsOpts, opts...)
	}
}

// Run executes the scenarios named in filter (all when empty) against
// cfg.BaseURI. The report is returned even when scenarios fail, together with an
// error wrapping ErrScenariosFailed.
func Run(ctx context.Context, cfg Config, filter []string, opts ...RunOption) (suite.Report, error) {
	settings := runSettings{logWriter: os.Stderr}
	for _, opt := range opts {
		opt(&settings)
	}

	obsOpts := append([]platformobservability.Option{
		platformobservability.WithLogWriter(settings.logWriter),
		platformobservability.WithLogLevel(cfg.logLevel()),
		platformobservability.WithEnvironment(cfg.Environment),
	}, settings.obsOpts...)
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, obsOpts...)
	if err != nil {
		return suite.Report{}, fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()

	runID := uuid.NewString()
	logger := instruments.Logger.With(slog.String("run_id", runID))

	client, err := petstore.NewClient(cfg.BaseURI,
		petstore.WithTimeout(cfg.RequestTimeout),
		petstore.WithLogger(logger),
		petstore.WithTracerProvider(instruments.TracerProvider),
		petstore.WithPropagator(instruments.Propagator),
		petstore.WithRequestLogging(cfg.LogRequests),
		petstore.WithResponseLogging(cfg.LogResponses),
		petstore.WithUploadField(cfg.UploadField),
	)
	if err != nil {
		return suite.Report{}, err
	}

	ids := fixtures.NewRandomIDGenerator()
	if cfg.FixtureSeed != 0 {
		ids = fixtures.NewIDGenerator(cfg.FixtureSeed)
	}
	harness := suite.NewHarness(client,
		suite.WithIDGenerator(ids),
		suite.WithLogger(logger),
		suite.WithTracerProvider(instruments.TracerProvider),
	)

	report, err := suite.Run(ctx, harness, filter)
	if err != nil {
		return report, err
	}
	report.RunID = runID
	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrScenariosFailed, len(failed), len(report.Results))
	}
	return report, nil
}
