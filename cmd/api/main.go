package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/api/rest"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/database"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/dncstore"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/eventlog"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/provider"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/telemetry"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
	"github.com/davidleathers/voice-outreach-backend/internal/service/ingest"
	"github.com/davidleathers/voice-outreach-backend/internal/service/outcome"
)

func main() {
	var configPath = flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := telemetry.SetupLogger(cfg.LogLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create service logger: %v", err)
	}
	defer zapLogger.Sync()

	telProvider, err := telemetry.Initialize(ctx, &telemetry.Config{
		ServiceName:    "vob-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telProvider.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	registry, err := metrics.NewRegistry("vob-api")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	sink, closeSink, err := buildSink(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to open event sink: %v", err)
	}
	defer closeSink()

	eventLog := eventlog.NewLog(cfg.EventLog.Capacity, sink, zapLogger)

	dncStore, err := dncstore.Open(cfg, registry, zapLogger)
	if err != nil {
		log.Fatalf("Failed to open do-not-call store: %v", err)
	}

	providerClient := provider.NewClient(cfg.Provider, zapLogger)

	router := outcome.NewRouter(dncStore, providerClient, eventLog,
		cfg.Provider.FromNumber, "", zapLogger)
	consumer := outcome.NewConsumer(router, 0, zapLogger)
	consumer.Start(ctx)

	ingester := ingest.NewIngester(eventLog, registry, zapLogger)

	handler := rest.NewHandler(ingester, consumer, eventLog, logger)
	httpRouter := rest.NewRouter(handler, rest.RouterOptions{
		Logger:    logger,
		Registry:  registry,
		JWTSecret: cfg.Security.JWTSecret,
	})

	server := rest.NewServer(cfg, httpRouter, logger)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	// Let the consumer finish events already dequeued.
	<-consumer.Done()
}

func buildSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (eventlog.Sink, func(), error) {
	switch cfg.EventLog.Backend {
	case "postgres":
		sink, err := database.NewPostgresSink(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	case "file":
		sink, err := eventlog.NewFileSink(cfg.EventLog.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return sink, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown event log backend %q", cfg.EventLog.Backend)
	}
}
