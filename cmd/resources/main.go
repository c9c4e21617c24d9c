package main

import (
	"clubhouse/internal/resources/handler"
	"clubhouse/internal/resources/repository"
	"clubhouse/internal/resources/service"
	"clubhouse/internal/resources/validator"
	"clubhouse/pkg/app"
	"clubhouse/pkg/config"
	"clubhouse/pkg/events"
	kafkaconfig "clubhouse/pkg/kafka/config"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"
)

const ServiceName = "resources"

// @title Clubhouse Resources API
// @version 1.0
// @description Fields, facilities and equipment available for scheduling.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Resources service")
	m := metrics.New(ServiceName)
	publisher := initPublisher(cfg, m)
	resourceService := initServices(cfg, publisher)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	serverApp := app.NewApplication(cfg, m)
	serverApp.OnShutdown(publisher.Close)
	serverApp.SetApp(handler.NewResourceHandler(resourceService, cfg.Log, auth, cfg.StaffRoles))
	serverApp.Run()
}

func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	publisher, err := events.New(kafkaCfg, events.DomainResources, ServiceName, cfg.Log, m)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher) service.ResourceService {
	resourceValidator := validator.NewResourceValidator(cfg.Log)
	resourceRepo := repository.NewMongoResourceRepository(cfg)
	resourceService := service.NewResourceService(
		resourceRepo,
		resourceValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Resources service initialized", "database", cfg.MongoDatabaseName)
	return resourceService
}
