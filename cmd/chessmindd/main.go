// Package main runs the opponent daemon: a REST API in front of the local
// search engine and the optional remote decision source.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessmind/cmd/chessmindd/cli"
	"chessmind/internal/opponent"
	"chessmind/internal/processor"
	"chessmind/internal/relay"
	"chessmind/internal/remote"
	"chessmind/internal/service"
	"chessmind/internal/storage"
	httptransport "chessmind/internal/transport/http"
)

const gracefulShutdownTimeout = time.Second * 5

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL storage)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		relayURL    = flag.String("relay-url", "", "Base URL of the text-generation relay (disables remote decisions if empty)")
		relayKey    = flag.String("relay-key", "", "API key for the relay")
		workers     = flag.Int("workers", 2, "Decision queue worker count")
	)
	flag.Parse()

	// 1. Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("Warning: failed to close storage cleanly: %v", err)
			}
		}()
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Remote decision adapter (optional)
	var adapter *remote.Adapter
	if *relayURL != "" {
		adapter = remote.New(relay.NewHTTPClient(*relayURL, *relayKey))
		log.Printf("Remote decision source: %s", *relayURL)
	} else {
		log.Printf("Remote decisions disabled (use -relay-url to enable)")
	}

	// 3. Service, selector and processor
	svc := service.New(store)
	selector := opponent.NewSelector(adapter)
	proc := processor.New(svc, selector, adapter, *workers)

	// 4. Fiber app
	app := httptransport.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Opponent API server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("API Endpoints: http://%s/api/v1/games", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	if err := svc.Close(); err != nil {
		log.Printf("Service close error: %v", err)
	}

	log.Println("Server exited")
}
