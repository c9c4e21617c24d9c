package main

import (
	"clubhouse/internal/marketplace/handler"
	"clubhouse/internal/marketplace/repository"
	"clubhouse/internal/marketplace/service"
	"clubhouse/internal/marketplace/validator"
	"clubhouse/pkg/app"
	"clubhouse/pkg/config"
	"clubhouse/pkg/events"
	kafkaconfig "clubhouse/pkg/kafka/config"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"

	"github.com/jonboulle/clockwork"
)

const ServiceName = "marketplace"

// @title Clubhouse Marketplace API
// @version 1.0
// @description Second-hand gear listings and admin moderation.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Marketplace moderation service")
	m := metrics.New(ServiceName)
	publisher := initPublisher(cfg, m)
	marketplaceService := initServices(cfg, publisher, m)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	if !auth.Enabled() {
		cfg.Log.Warn("JWT_SECRET is not set, moderation routes are unauthenticated")
	}
	serverApp := app.NewApplication(cfg, m)
	serverApp.OnShutdown(publisher.Close)
	serverApp.SetApp(handler.NewMarketplaceHandler(marketplaceService, cfg.Log, auth, cfg.AdminRoles))
	serverApp.Run()
}

func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	publisher, err := events.New(kafkaCfg, events.DomainMarketplace, ServiceName, cfg.Log, m)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics) service.MarketplaceService {
	marketplaceValidator := validator.NewMarketplaceValidator(cfg.Log)
	marketplaceRepo := repository.NewMongoMarketplaceRepository(cfg)
	marketplaceService := service.NewMarketplaceService(
		marketplaceRepo,
		marketplaceValidator,
		publisher,
		m,
		clockwork.NewRealClock(),
		cfg,
	)

	cfg.Log.Info("Marketplace service initialized", "database", cfg.MongoDatabaseName)
	return marketplaceService
}
