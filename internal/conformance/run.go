package conformance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnknownScenario is returned when a filter names a scenario that does not exist.
var ErrUnknownScenario = errors.New("unknown scenario")

// Result is the outcome of one scenario.
type Result struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	TraceID  string        `json:"traceId,omitempty"`
	Err      error         `json:"-"`
}

// Report collects the results of a run in execution order.
type Report struct {
	RunID     string        `json:"runId,omitempty"`
	BaseURI   string        `json:"baseUri"`
	Seed      uint64        `json:"seed"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Results   []Result      `json:"results"`
}

// Passed reports whether every scenario that ran passed and none were skipped.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the results that did not pass.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Tally counts passed, failed and skipped results. Skipped results are not
// counted as failed.
func (r Report) Tally() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch {
		case res.Passed:
			passed++
		case res.Skipped:
			skipped++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}

// Select returns the scenarios named in filter, in execution order. An empty
// filter selects everything.
func Select(filter []string) ([]Scenario, error) {
	all := Scenarios()
	if len(filter) == 0 {
		return all, nil
	}
	for _, name := range filter {
		if !slices.ContainsFunc(all, func(s Scenario) bool { return s.Name == name }) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
		}
	}
	selected := make([]Scenario, 0, len(filter))
	for _, s := range all {
		if slices.Contains(filter, s.Name) {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// Run executes the selected scenarios one after another. Scenario failures are
// recorded in the report; the returned error is reserved for a bad filter.
// Once ctx is done the remaining scenarios are marked as skipped.
func Run(ctx context.Context, h *Harness, filter []string) (Report, error) {
	scenarios, err := Select(filter)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		BaseURI:   h.client.BaseURL(),
		Seed:      h.ids.Seed(),
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(scenarios)),
	}
	h.logger.LogAttrs(ctx, slog.LevelInfo, "conformance run started",
		slog.String("base_uri", report.BaseURI),
		slog.Int("scenarios", len(scenarios)),
		slog.Uint64("seed", report.Seed),
	)
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Name: s.Name, Skipped: true, Error: err.Error(), Err: err})
			continue
		}
		report.Results = append(report.Results, h.runScenario(ctx, s))
	}
	report.Duration = time.Since(report.StartedAt)
	failed := len(report.Failed())
	h.logger.LogAttrs(ctx, slog.LevelInfo, "conformance run finished",
		slog.Int("passed", len(report.Results)-failed),
		slog.Int("failed", failed),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

func (h *Harness) runScenario(ctx context.Context, s Scenario) Result {
	ctx, span := h.tracer.Start(ctx, "conformance."+s.Name, trace.WithAttributes(
		attribute.String("conformance.scenario", s.Name),
	))
	defer span.End()

	result := Result{Name: s.Name}
	if sc := span.SpanContext(); sc.HasTraceID() {
		result.TraceID = sc.TraceID().String()
	}
	logger := h.logger.With(slog.String("scenario", s.Name))
	scoped := *h
	scoped.logger = logger

	start := time.Now()
	err := s.Run(ctx, &scoped)
	result.Duration = time.Since(start)

	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) && failure.Scenario == "" {
			failure.Scenario = s.Name
		}
		result.Err = err
		result.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "scenario failed")
		logger.LogAttrs(ctx, slog.LevelError, "scenario failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration),
			slog.String("trace_id", result.TraceID),
		)
		return result
	}
	result.Passed = true
	logger.LogAttrs(ctx, slog.LevelInfo, "scenario passed",
		slog.Duration("duration", result.Duration),
		slog.String("trace_id", result.TraceID),
	)
	return result
}
