package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sajithdilhan/ECommerceBackend/internal/app/bootstrap"
)

// User registry entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server and the order-created subscriber.
func main() {
	log.Println("userapi starting")
	app, err := bootstrap.BuildUserAPI()
	if err != nil {
		log.Fatalf("bootstrap userapi failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("userapi shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("userapi stopped with error: %v", err)
	}
}
