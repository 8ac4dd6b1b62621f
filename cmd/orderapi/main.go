package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sajithdilhan/ECommerceBackend/internal/app/bootstrap"
)

// Order registry entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Start HTTP server and the user-created subscriber feeding the replica.
func main() {
	log.Println("orderapi starting")
	app, err := bootstrap.BuildOrderAPI()
	if err != nil {
		log.Fatalf("bootstrap orderapi failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("orderapi shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("orderapi stopped with error: %v", err)
	}
}
