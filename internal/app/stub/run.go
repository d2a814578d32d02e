// Package stub boots the local pet-store service with observability and a
// repository wired.
package stub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	petsmemory "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/memory"
	petsobs "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/observability"
	petspostgres "github.com/Apurer/petstore-api-tests/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/petstore-api-tests/internal/domains/pets/application"
	petsports "github.com/Apurer/petstore-api-tests/internal/domains/pets/ports"
	"github.com/Apurer/petstore-api-tests/internal/platform/migrations"
	platformobservability "github.com/Apurer/petstore-api-tests/internal/platform/observability"
	platformpostgres "github.com/Apurer/petstore-api-tests/internal/platform/postgres"
	stubhttp "github.com/Apurer/petstore-api-tests/internal/stub"
)

const serviceName = "petstore-stub"

// Run boots the stub HTTP service and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithEnvironment(cfg.Environment))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildPetRepository(ctx, cfg.PostgresDSN, logger)
	defer cleanupRepo()

	handler := NewHandler(repo, cfg, instruments)
	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	return Serve(ctx, listener, handler, cfg.ShutdownTimeout, logger)
}

// NewHandler assembles the decorated pet service and the gin router.
func NewHandler(repo petsports.Repository, cfg Config, instruments *platformobservability.Instruments) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	petService := petsobs.New(
		petsapp.NewService(repo),
		petsobs.WithLogger(instruments.Logger),
		petsobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petsobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	return stubhttp.NewRouter(petService,
		stubhttp.WithBasePath(cfg.BasePath),
		stubhttp.WithServiceName(serviceName),
		stubhttp.WithUploadField(cfg.UploadField),
		stubhttp.WithMaxUploadBytes(cfg.MaxUploadBytes),
		stubhttp.WithLogger(instruments.Logger),
		stubhttp.WithTracerProvider(instruments.TracerProvider),
		stubhttp.WithPropagator(instruments.Propagator),
	)
}

// Serve runs handler on listener until ctx is done, then drains in-flight
// requests for at most shutdownTimeout.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("petstore stub listening", slog.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down petstore stub")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildPetRepository(ctx context.Context, dsn string, logger *slog.Logger) (petsports.Repository, func()) {
	db, cleanup := platformpostgres.ConnectDSN(ctx, dsn, logger)
	if db == nil {
		return petsmemory.NewRepository(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate pet schema, falling back to in-memory pet repository", slog.String("error", err.Error()))
		cleanup()
		return petsmemory.NewRepository(), func() {}
	}
	logger.Info("pet repository configured with postgres")
	return petspostgres.NewRepository(db), cleanup
}
