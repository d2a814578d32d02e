// Package petstore is an HTTP client for a pet-store service speaking the
// Swagger petstore /pet contract. It returns raw status codes and bodies so that
// callers can assert on them, and leaves interpretation to the caller.
package petstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/http/mapper"
	"github.com/Apurer/petstore-api-tests/internal/domains/pets/domain"
)

const tracerName = "github.com/Apurer/petstore-api-tests/internal/clients/http/petstore"

// DefaultUploadField is the multipart field name the image is sent under.
const DefaultUploadField = "file"

// Client calls the pet-store service rooted at a base URI.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
	logRequests    bool
	logResponses   bool
	uploadField    string
	timeout        time.Duration
	endpoints      Endpoints
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its transport is wrapped with
// OpenTelemetry instrumentation.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout. It applies to the client's own copy
// of any HTTP client passed through WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracerProvider sets the provider used for client spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracerProvider = tp
	}
}

// WithPropagator sets the propagator used to inject trace headers. The global
// propagator is used when unset.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *Client) {
		c.propagator = p
	}
}

// WithRequestLogging logs outgoing request bodies.
func WithRequestLogging(enabled bool) Option {
	return func(c *Client) {
		c.logRequests = enabled
	}
}

// WithResponseLogging logs response bodies.
func WithResponseLogging(enabled bool) Option {
	return func(c *Client) {
		c.logResponses = enabled
	}
}

// WithUploadField overrides the multipart field carrying the image bytes.
func WithUploadField(name string) Option {
	return func(c *Client) {
		if name = strings.TrimSpace(name); name != "" {
			c.uploadField = name
		}
	}
}

// NewClient builds a client for baseURL, e.g. https://petstore.swagger.io/v2.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("petstore base URI is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse petstore base URI: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("petstore base URI must be http or https, got %q", baseURL)
	}
	c := &Client{
		baseURL:     baseURL,
		uploadField: DefaultUploadField,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.tracerProvider == nil {
		c.tracerProvider = nooptrace.NewTracerProvider()
	}
	c.tracer = c.tracerProvider.Tracer(tracerName)

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	transportOpts := []otelhttp.Option{otelhttp.WithTracerProvider(c.tracerProvider)}
	if c.propagator != nil {
		transportOpts = append(transportOpts, otelhttp.WithPropagators(c.propagator))
	}
	instrumented := *c.httpClient
	instrumented.Transport = otelhttp.NewTransport(base, transportOpts...)
	if c.timeout > 0 {
		instrumented.Timeout = c.timeout
	}
	c.httpClient = &instrumented
	return c, nil
}

// BaseURL returns the normalized base URI.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AddPet posts a new pet as JSON.
func (c *Client) AddPet(ctx context.Context, pet *domain.Pet) (*Response, error) {
	body, err := json.Marshal(mapper.FromDomainPet(pet))
	if err != nil {
		return nil, fmt.Errorf("marshal pet: %w", err)
	}
	return c.do(ctx, "AddPet", request{
		method:      http.MethodPost,
		path:        c.endpoints.Pets(),
		contentType: "application/json",
		body:        body,
	}, attribute.Int64("pet.id", petID(pet)))
}

// UpdatePet replaces a pet through PUT.
func (c *Client) UpdatePet(ctx context.Context, pet *domain.Pet) (*Response, error) {
	body, err := json.Marshal(mapper.FromDomainPet(pet))
	if err != nil {
		return nil, fmt.Errorf("marshal pet: %w", err)
	}
	return c.do(ctx, "UpdatePet", request{
		method:      http.MethodPut,
		path:        c.endpoints.Pets(),
		contentType: "application/json",
		body:        body,
	}, attribute.Int64("pet.id", petID(pet)))
}

// FindByStatus queries pets by status. Statuses are sent as one comma-separated value.
func (c *Client) FindByStatus(ctx context.Context, statuses ...domain.Status) (*Response, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	joined := strings.Join(values, ",")
	return c.do(ctx, "FindByStatus", request{
		method: http.MethodGet,
		path:   c.endpoints.FindByStatus(),
		query:  url.Values{"status": []string{joined}},
	}, attribute.String("pet.statuses", joined))
}

// GetPet fetches a pet by id.
func (c *Client) GetPet(ctx context.Context, id int64) (*Response, error) {
	path, err := c.endpoints.Pet(id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, "GetPet", request{method: http.MethodGet, path: path}, attribute.Int64("pet.id", id))
}

// UpdatePetWithForm posts name and status as form fields. Empty values are omitted.
func (c *Client) UpdatePetWithForm(ctx context.Context, id int64, name string, status domain.Status) (*Response, error) {
	path, err := c.endpoints.Pet(id)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	if name != "" {
		form.Set("name", name)
	}
	if status != "" {
		form.Set("status", string(status))
	}
	return c.do(ctx, "UpdatePetWithForm", request{
		method:      http.MethodPost,
		path:        path,
		contentType: "application/x-www-form-urlencoded",
		body:        []byte(form.Encode()),
	}, attribute.Int64("pet.id", id))
}

// DeletePet deletes a pet by id.
func (c *Client) DeletePet(ctx context.Context, id int64) (*Response, error) {
	path, err := c.endpoints.Pet(id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, "DeletePet", request{method: http.MethodDelete, path: path}, attribute.Int64("pet.id", id))
}

// Upload is an image sent to the uploadImage endpoint.
type Upload struct {
	Filename string
	Content  []byte
	Metadata string
}

// UploadImage posts a multipart body with the image and its additionalMetadata.
func (c *Client) UploadImage(ctx context.Context, id int64, upload Upload) (*Response, error) {
	path, err := c.endpoints.UploadImage(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if upload.Metadata != "" {
		if err := writer.WriteField("additionalMetadata", upload.Metadata); err != nil {
			return nil, fmt.Errorf("write additionalMetadata: %w", err)
		}
	}
	part, err := writer.CreateFormFile(c.uploadField, upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("create %s part: %w", c.uploadField, err)
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, fmt.Errorf("write %s part: %w", c.uploadField, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return c.do(ctx, "UploadImage", request{
		method:      http.MethodPost,
		path:        path,
		contentType: writer.FormDataContentType(),
		accept:      "application/json",
		body:        buf.Bytes(),
		binary:      true,
	}, attribute.Int64("pet.id", id), attribute.String("asset.filename", upload.Filename))
}

type request struct {
	method      string
	path        string
	query       url.Values
	contentType string
	accept      string
	body        []byte
	binary      bool
}

func (c *Client) do(ctx context.Context, operation string, r request, attrs ...attribute.KeyValue) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "petstore."+operation, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("http.request.method", r.method), attribute.String("url.path", r.path))...))
	defer span.End()
	traceID := traceIDFrom(span)

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, c.fail(ctx, span, r, fmt.Errorf("create %s request: %w", operation, err))
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)

	reqAttrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.String("trace_id", traceID),
	}
	if len(r.query) > 0 {
		reqAttrs = append(reqAttrs, slog.String("query", r.query.Encode()))
	}
	if c.logRequests && len(r.body) > 0 {
		if r.binary {
			reqAttrs = append(reqAttrs, slog.Int("body_bytes", len(r.body)))
		} else {
			reqAttrs = append(reqAttrs, slog.String("body", string(r.body)))
		}
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "petstore request", reqAttrs...)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, c.fail(ctx, span, r, fmt.Errorf("call petstore %s %s: %w", r.method, r.path, err), slog.Duration("duration", duration))
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, c.fail(ctx, span, r, fmt.Errorf("read petstore %s %s response: %w", r.method, r.path, err),
			slog.Int("status", res.StatusCode), slog.Duration("duration", duration))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if res.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, res.Status)
	}

	respAttrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", duration),
		slog.String("trace_id", traceID),
	}
	if c.logResponses && len(respBody) > 0 {
		respAttrs = append(respAttrs, slog.String("body", string(respBody)))
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "petstore response", respAttrs...)

	return &Response{
		Method:     r.method,
		Path:       r.path,
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header.Clone(),
		Body:       respBody,
		Duration:   duration,
		TraceID:    traceID,
	}, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, r request, err error, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs,
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.String("error", err.Error()),
	)
	c.logger.LogAttrs(ctx, slog.LevelError, "petstore request failed", attrs...)
	return err
}

func traceIDFrom(span trace.Span) string {
	sc := span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func petID(p *domain.Pet) int64 {
	if p == nil {
		return 0
	}
	return p.ID
}
