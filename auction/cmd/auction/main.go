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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/gavelworks/gavel-stack/auction/internal/compensator"
	"github.com/gavelworks/gavel-stack/auction/internal/config"
	auctionevents "github.com/gavelworks/gavel-stack/auction/internal/events"
	"github.com/gavelworks/gavel-stack/auction/internal/handlers"
	authmw "github.com/gavelworks/gavel-stack/auction/internal/middleware"
	"github.com/gavelworks/gavel-stack/auction/internal/ratelimit"
	"github.com/gavelworks/gavel-stack/auction/internal/repository"
	"github.com/gavelworks/gavel-stack/auction/internal/server"
	"github.com/gavelworks/gavel-stack/auction/internal/service"
	"github.com/gavelworks/gavel-stack/auction/pkg/tokens"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/common/messaging"
	"github.com/gavelworks/gavel-stack/common/messaging/nats"
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

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	log.Println("Running database migrations...")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	// Connect to the bus and make sure the streams exist
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = "gavel-auction"

	bus, err := nats.NewJetStreamClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := bus.CreateOrUpdateStream(ctx, nats.AuctionEventsStream); err != nil {
		log.Fatalf("Failed to create events stream: %v", err)
	}
	if _, err := bus.CreateOrUpdateStream(ctx, nats.AuctionFaultsStream); err != nil {
		log.Fatalf("Failed to create faults stream: %v", err)
	}

	publisher := auctionevents.NewEventPublisher(bus, logger)
	go publisher.Run(ctx)

	// Compensator consumes the fault channel for created-auction events
	comp := compensator.New(bus, logger)
	faultCfg := nats.DefaultConsumerConfig(messaging.QueueFaultHandlers,
		messaging.FaultSubject(messaging.SubjectAuctionCreated))
	stopFaults, err := bus.Consume(ctx, nats.AuctionFaultsStream.Name, faultCfg, comp.HandleFault)
	if err != nil {
		log.Fatalf("Failed to start fault consumer: %v", err)
	}
	defer stopFaults()

	limiter, err := ratelimit.NewRedisRateLimiter(
		cfg.RateLimit.RedisURL, cfg.RateLimit.Limit, cfg.RateLimit.Window,
		!cfg.RateLimit.Enabled)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer limiter.Close()

	svc := service.NewService(repo, publisher, logger)
	tokenGen := tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := handlers.NewHandler(svc, limiter, bus, logger)
	router := server.NewRouter(handler, authmw.NewAuthMiddleware(tokenGen), cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Auction service listening on %s", srv.Addr)
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
