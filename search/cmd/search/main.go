package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
	"github.com/gavelworks/gavel-stack/common/messaging/nats"
	"github.com/gavelworks/gavel-stack/search/internal/bootstrap"
	"github.com/gavelworks/gavel-stack/search/internal/config"
	"github.com/gavelworks/gavel-stack/search/internal/handlers"
	"github.com/gavelworks/gavel-stack/search/internal/projector"
	"github.com/gavelworks/gavel-stack/search/internal/server"
	"github.com/gavelworks/gavel-stack/search/internal/service"
	"github.com/gavelworks/gavel-stack/search/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	store, err := storage.NewOpenSearchStore(storage.Config{
		URL:      cfg.OpenSearch.URL,
		Username: cfg.OpenSearch.Username,
		Password: cfg.OpenSearch.Password,
		Insecure: cfg.OpenSearch.Insecure,
		Index:    cfg.OpenSearch.Index,
	})
	if err != nil {
		log.Fatalf("Failed to connect to OpenSearch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.EnsureIndex(ctx); err != nil {
		log.Fatalf("Failed to ensure index: %v", err)
	}

	// Backfill before live consumption; snapshot upserts make the overlap
	// between the two harmless.
	if err := bootstrap.New(store, cfg.Bootstrap.AuctionURL, logger).Run(ctx); err != nil {
		log.Fatalf("Failed to bootstrap index: %v", err)
	}

	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = "gavel-search"

	bus, err := nats.NewJetStreamClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	if _, err := bus.CreateOrUpdateStream(ctx, nats.AuctionEventsStream); err != nil {
		log.Fatalf("Failed to create events stream: %v", err)
	}

	proj := projector.New(store, logger)
	consumerCfg := nats.DefaultConsumerConfig(messaging.QueueSearchProjectors, "auction.>")
	stopConsume, err := bus.Consume(ctx, nats.AuctionEventsStream.Name, consumerCfg, proj.Handle)
	if err != nil {
		log.Fatalf("Failed to start projector: %v", err)
	}
	defer stopConsume()

	handler := handlers.NewHandler(service.NewService(store), bus, logger)
	router := server.NewRouter(handler, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Search service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
