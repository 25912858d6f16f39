package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"agentui/internal/gateway/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("gateway: init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Printf("gateway: server error: %v", err)
		}
	}

	log.Println("gateway: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("gateway: forced shutdown: %v", err)
	}
	log.Println("gateway: stopped")
}
