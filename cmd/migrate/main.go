package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/petstore-api-tests/internal/platform/migrations"
	platformpostgres "github.com/Apurer/petstore-api-tests/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectDSN(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot migrate the pet schema")
	}

	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		log.Fatalf("failed to migrate pet schema: %v", err)
	}
	logger.Info("pet schema migrated")
}
