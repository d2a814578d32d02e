package conformance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petstore-api-tests/internal/clients/http/petstore"
	petmemory "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/memory"
	petsapp "github.com/Apurer/petstore-api-tests/internal/domains/pets/application"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
	"github.com/Apurer/petstore-api-tests/internal/fixtures"
	"github.com/Apurer/petstore-api-tests/internal/platform/observability"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
	"github.com/Apurer/petstore-api-tests/internal/stub"
)

func newStubServer(t *testing.T, wrap func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var handler http.Handler = stub.NewRouter(petsapp.NewService(petmemory.NewRepository()))
	if wrap != nil {
		handler = wrap(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newHarness(t *testing.T, srv *httptest.Server, opts ...HarnessOption) *Harness {
	t.Helper()
	client, err := petstore.NewClient(srv.URL+"/v2", petstore.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	opts = append([]HarnessOption{WithIDGenerator(fixtures.NewIDGenerator(42))}, opts...)
	return NewHarness(client, opts...)
}

func TestRun_AllScenariosPassAgainstStub(t *testing.T) {
	srv := newStubServer(t, nil)
	inst := observability.NewTestInstruments(nil)
	h := newHarness(t, srv, WithTracerProvider(inst.TracerProvider))

	report, err := Run(context.Background(), h, nil)
	require.NoError(t, err)
	require.Len(t, report.Results, len(Scenarios()))
	for _, res := range report.Results {
		assert.True(t, res.Passed, "%s: %s", res.Name, res.Error)
		assert.NotEmpty(t, res.TraceID, res.Name)
	}
	assert.True(t, report.Passed())
	assert.Empty(t, report.Failed())
	assert.Equal(t, uint64(42), report.Seed)
	assert.Equal(t, srv.URL+"/v2", report.BaseURI)

	var scenarioSpans int
	for _, span := range inst.Spans.Ended() {
		if strings.HasPrefix(span.Name(), "conformance.") {
			scenarioSpans++
		}
	}
	assert.Equal(t, len(Scenarios()), scenarioSpans)
}

func TestRun_Filter(t *testing.T) {
	srv := newStubServer(t, nil)
	h := newHarness(t, srv)

	report, err := Run(context.Background(), h, []string{DeletePet, AddPet})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, AddPet, report.Results[0].Name)
	assert.Equal(t, DeletePet, report.Results[1].Name)

	_, err = Run(context.Background(), h, []string{"no-such-scenario"})
	require.ErrorIs(t, err, ErrUnknownScenario)
}

func TestRun_CancelledContextSkips(t *testing.T) {
	srv := newStubServer(t, nil)
	h := newHarness(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, h, nil)
	require.NoError(t, err)
	require.NotEmpty(t, report.Results)
	for _, res := range report.Results {
		assert.True(t, res.Skipped)
		assert.False(t, res.Passed)
	}
	assert.False(t, report.Passed())

	passed, failed, skipped := report.Tally()
	assert.Zero(t, passed)
	assert.Zero(t, failed)
	assert.Equal(t, len(report.Results), skipped)
}

func TestDeletePet_FailsWhenRepeatDeleteSucceeds(t *testing.T) {
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	h := newHarness(t, srv)

	report, err := Run(context.Background(), h, []string{DeletePet})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	require.False(t, res.Passed)

	var failure *Failure
	require.True(t, errors.As(res.Err, &failure))
	assert.Equal(t, DeletePet, failure.Scenario)
	assert.Equal(t, "delete pet again", failure.Step)
	assert.Equal(t, httpstatus.NotFound, failure.Status)
	assert.Equal(t, httpstatus.OK, failure.Actual)

	var statusErr *petstore.UnexpectedStatusError
	assert.True(t, errors.As(res.Err, &statusErr))
}

func TestAddPet_FailsOnEchoMismatch(t *testing.T) {
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"Someone Else","photoUrls":[],"tags":[],"status":"available"}`))
		})
	})
	h := newHarness(t, srv)

	report, err := Run(context.Background(), h, []string{AddPet})
	require.NoError(t, err)
	var failure *Failure
	require.True(t, errors.As(report.Results[0].Err, &failure))
	assert.Equal(t, "id", failure.Field)
	assert.NotEmpty(t, failure.Diff)
}

// rewriteJSON lets the stub answer matching requests, then edits the JSON
// object it returned before the client sees it.
func rewriteJSON(match func(*http.Request) bool, edit func(body map[string]any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !match(r) {
				next.ServeHTTP(w, r)
				return
			}
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, r)
			dec := json.NewDecoder(rec.Body)
			dec.UseNumber()
			var body map[string]any
			if err := dec.Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			edit(body)
			raw, err := json.Marshal(body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.Code)
			_, _ = w.Write(raw)
		})
	}
}

func requestIs(method, path string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return r.Method == method && r.URL.Path == path
	}
}

func runSingle(t *testing.T, h *Harness, name string) *Failure {
	t.Helper()
	report, err := Run(context.Background(), h, []string{name})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.False(t, report.Results[0].Passed)
	var failure *Failure
	require.True(t, errors.As(report.Results[0].Err, &failure), report.Results[0].Error)
	assert.Equal(t, name, failure.Scenario)
	return failure
}

func TestAddPet_FailsOnNestedFieldMismatch(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(body map[string]any)
		field string
	}{
		{
			name: "tags reordered",
			edit: func(body map[string]any) {
				tags := body["tags"].([]any)
				tags[0], tags[1] = tags[1], tags[0]
			},
			field: "tags",
		},
		{
			name: "category renamed",
			edit: func(body map[string]any) {
				body["category"] = map[string]any{"id": 1, "name": "Cat"}
			},
			field: "category",
		},
		{
			name: "photo urls dropped",
			edit: func(body map[string]any) {
				body["photoUrls"] = []any{"https://www.dog.com"}
			},
			field: "photoUrls",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newStubServer(t, rewriteJSON(requestIs(http.MethodPost, "/v2/pet"), tt.edit))
			failure := runSingle(t, newHarness(t, srv), AddPet)

			assert.Equal(t, "add pet", failure.Step)
			assert.Equal(t, tt.field, failure.Field)
			assert.NotEmpty(t, failure.Diff)
			assert.Contains(t, failure.Error(), tt.field+" mismatch (-want +got)")
		})
	}
}

func TestUpdatePet_FailsOnEchoMismatch(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(body map[string]any)
		field  string
		actual any
	}{
		{
			name:   "id",
			edit:   func(body map[string]any) { body["id"] = 1 },
			field:  "id",
			actual: int64(1),
		},
		{
			name:   "name",
			edit:   func(body map[string]any) { body["name"] = fixtures.DefaultPetName },
			field:  "name",
			actual: fixtures.DefaultPetName,
		},
		{
			name:   "status",
			edit:   func(body map[string]any) { body["status"] = "available" },
			field:  "status",
			actual: domain.StatusAvailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newStubServer(t, rewriteJSON(requestIs(http.MethodPut, "/v2/pet"), tt.edit))
			failure := runSingle(t, newHarness(t, srv), UpdatePet)

			assert.Equal(t, "replace pet", failure.Step)
			assert.Equal(t, tt.field, failure.Field)
			assert.Equal(t, tt.actual, failure.Actual)
		})
	}
}

func TestFindByID_FailsWhenMissingPetIsFound(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_123)
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && r.URL.Path == "/v2/pet/1700000000123" {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	h := newHarness(t, srv, WithClock(func() time.Time { return fixed }))

	failure := runSingle(t, h, FindByID)
	assert.Equal(t, "get missing pet", failure.Step)
	assert.Equal(t, "status", failure.Field)
	assert.Equal(t, httpstatus.NotFound, failure.Status)
	assert.Equal(t, httpstatus.OK, failure.Actual)
}

func TestUploadImage_FailsOnServerError(t *testing.T) {
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/uploadImage") {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	failure := runSingle(t, newHarness(t, srv), UploadImage)
	assert.Equal(t, "upload image", failure.Step)
	assert.Equal(t, "status", failure.Field)
	assert.Equal(t, httpstatus.OK, failure.Status)
	assert.Equal(t, httpstatus.InternalServerError, failure.Actual)

	var statusErr *petstore.UnexpectedStatusError
	assert.True(t, errors.As(failure, &statusErr))
}

func TestFindByStatus_SendsEveryConventionalStatus(t *testing.T) {
	var query string
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v2/pet/findByStatus" {
				query = r.URL.Query().Get("status")
			}
			next.ServeHTTP(w, r)
		})
	})

	report, err := Run(context.Background(), newHarness(t, srv), []string{FindByStatus})
	require.NoError(t, err)
	require.True(t, report.Results[0].Passed, report.Results[0].Error)
	assert.Equal(t, "available,pending,sold", query)
}

func TestFindByStatus_FailsOnUndecodableBody(t *testing.T) {
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		})
	})
	h := newHarness(t, srv)

	report, err := Run(context.Background(), h, []string{FindByStatus})
	require.NoError(t, err)
	require.False(t, report.Results[0].Passed)
	assert.ErrorIs(t, report.Results[0].Err, petstore.ErrDecode)
}

func TestCreatePet_FallsBackToFixtureID(t *testing.T) {
	var deleted []string
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/v2/pet" {
				var buf bytes.Buffer
				_, _ = buf.ReadFrom(r.Body)
				r.Body.Close()
				rec := httptest.NewRecorder()
				r2 := r.Clone(r.Context())
				r2.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))
				next.ServeHTTP(rec, r2)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(rec.Code)
				_, _ = w.Write([]byte(`{"name":"no id here"}`))
				return
			}
			if r.Method == http.MethodDelete {
				deleted = append(deleted, r.URL.Path)
			}
			next.ServeHTTP(w, r)
		})
	})
	var logs bytes.Buffer
	h := newHarness(t, srv, WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))

	report, err := Run(context.Background(), h, []string{DeletePet})
	require.NoError(t, err)
	require.True(t, report.Results[0].Passed, report.Results[0].Error)
	require.Len(t, deleted, 2)
	assert.Contains(t, logs.String(), "using fixture id")
}

func TestFindByID_UsesClockForMissingID(t *testing.T) {
	var paths []string
	srv := newStubServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				paths = append(paths, r.URL.Path)
			}
			next.ServeHTTP(w, r)
		})
	})
	fixed := time.UnixMilli(1_700_000_000_123)
	h := newHarness(t, srv, WithClock(func() time.Time { return fixed }))

	report, err := Run(context.Background(), h, []string{FindByID})
	require.NoError(t, err)
	require.True(t, report.Results[0].Passed, report.Results[0].Error)
	require.Len(t, paths, 2)
	assert.Equal(t, "/v2/pet/1700000000123", paths[1])
}

func TestReport_JSON(t *testing.T) {
	report := Report{
		RunID:   "run-1",
		BaseURI: "http://localhost/v2",
		Results: []Result{{Name: AddPet, Passed: true}, {Name: DeletePet, Error: "boom", Err: errors.New("boom")}},
	}
	raw, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"runId":"run-1"`)
	assert.Contains(t, string(raw), `"error":"boom"`)
	assert.False(t, report.Passed())
	assert.Len(t, report.Failed(), 1)
}
