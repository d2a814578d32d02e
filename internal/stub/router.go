// Package stub serves a local pet-store implementation of the /pet contract so
// the conformance suite can run without the public service.
package stub

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
)

const (
	DefaultBasePath    = "/v2"
	DefaultServiceName = "petstore-stub"
	DefaultUploadField = "file"
	// DefaultMaxUploadBytes bounds the multipart body kept in memory.
	DefaultMaxUploadBytes int64 = 8 << 20
)

type routerConfig struct {
	basePath       string
	serviceName    string
	uploadField    string
	maxUploadBytes int64
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
}

// Option configures the router.
type Option func(*routerConfig)

// WithBasePath mounts the routes under path instead of /v2. An empty path or "/"
// mounts them at the root.
func WithBasePath(path string) Option {
	return func(c *routerConfig) {
		c.basePath = normalizeBasePath(path)
	}
}

// WithServiceName names the server spans.
func WithServiceName(name string) Option {
	return func(c *routerConfig) {
		if name != "" {
			c.serviceName = name
		}
	}
}

// WithUploadField sets the preferred multipart field of the image upload.
func WithUploadField(field string) Option {
	return func(c *routerConfig) {
		if field != "" {
			c.uploadField = field
		}
	}
}

// WithMaxUploadBytes bounds the multipart memory used by image uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(c *routerConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger injects the access logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *routerConfig) {
		c.logger = logger
	}
}

// WithTracerProvider sets the provider used by the otelgin middleware.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *routerConfig) {
		c.tracerProvider = tp
	}
}

// WithPropagator sets the propagator used to extract incoming trace context.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *routerConfig) {
		c.propagator = p
	}
}

// NewRouter builds a gin engine serving the pet routes backed by service.
func NewRouter(service ports.Service, opts ...Option) *gin.Engine {
	cfg := routerConfig{
		basePath:       DefaultBasePath,
		serviceName:    DefaultServiceName,
		uploadField:    DefaultUploadField,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.maxUploadBytes
	router.Use(gin.Recovery())

	var otelOpts []otelgin.Option
	if cfg.tracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(cfg.tracerProvider))
	}
	if cfg.propagator != nil {
		otelOpts = append(otelOpts, otelgin.WithPropagators(cfg.propagator))
	}
	router.Use(otelgin.Middleware(cfg.serviceName, otelOpts...))
	router.Use(accessLog(cfg.logger))

	api := NewPetAPI(service, cfg.uploadField)
	RegisterRoutes(router.Group(cfg.basePath), api)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// RegisterRoutes mounts the pet routes on group.
func RegisterRoutes(group *gin.RouterGroup, api *PetAPI) {
	group.POST("/pet", api.AddPet)
	group.PUT("/pet", api.UpdatePet)
	group.GET("/pet/findByStatus", api.FindPetsByStatus)
	group.GET("/pet/:petId", api.GetPetByID)
	group.POST("/pet/:petId", api.UpdatePetWithForm)
	group.DELETE("/pet/:petId", api.DeletePet)
	group.POST("/pet/:petId/uploadImage", api.UploadFile)
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request handled", attrs...)
	}
}

func normalizeBasePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
