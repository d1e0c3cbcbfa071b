package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/hireflow/internal/portal/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("failed to initialize portal: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("portal error: %v", err)
	}
}
