package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	appstub "github.com/Apurer/petstore-api-tests/internal/app/stub"
)

func main() {
	cfg, err := appstub.LoadConfig()
	if err != nil {
		log.Fatalf("petstore stub: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := appstub.Run(ctx, cfg); err != nil {
		log.Fatalf("petstore stub exited: %v", err)
	}
}
