package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/app"
	"github.com/Black-And-White-Club/trivia-ledger/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := &app.App{}
	if err := application.Initialize(ctx, cfg); err != nil {
		log.Printf("Failed to initialize app: %v", err)
		shutdown(application)
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		application.Observability.Logger.Error("Application stopped with error", "error", runErr)
	} else {
		application.Observability.Logger.Info("Shutdown signal received")
	}
	stop()

	shutdown(application)
	if runErr != nil {
		os.Exit(1)
	}
}

func shutdown(application *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Close(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		return
	}
	log.Println("Application shut down gracefully.")
}
