package main

import (
	resourcesclient "clubhouse/internal/resources/client"
	resourcesrepo "clubhouse/internal/resources/repository"
	"clubhouse/internal/schedules/handler"
	"clubhouse/internal/schedules/repository"
	"clubhouse/internal/schedules/service"
	"clubhouse/internal/schedules/validator"
	"clubhouse/pkg/app"
	"clubhouse/pkg/config"
	"clubhouse/pkg/events"
	kafkaconfig "clubhouse/pkg/kafka/config"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"
)

const ServiceName = "schedules"

// @title Clubhouse Schedules API
// @version 1.0
// @description Team activities, resource bookings and conflict detection.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Schedules service")
	m := metrics.New(ServiceName)
	publisher := initPublisher(cfg, m)
	scheduleService := initServices(cfg, publisher, m)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	serverApp := app.NewApplication(cfg, m)
	serverApp.OnShutdown(publisher.Close)
	serverApp.SetApp(handler.NewScheduleHandler(scheduleService, cfg.Log, auth, cfg.StaffRoles))
	serverApp.Run()
}

func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	publisher, err := events.New(kafkaCfg, events.DomainSchedules, ServiceName, cfg.Log, m)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher, m *metrics.Metrics) service.ScheduleService {
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)
	scheduleRepo := repository.NewMongoScheduleRepository(cfg)
	scheduleService := service.NewScheduleService(
		scheduleRepo,
		initResourceLookup(cfg),
		scheduleValidator,
		publisher,
		m,
		cfg,
	)

	cfg.Log.Info("Schedules service initialized", "database", cfg.MongoDatabaseName)
	return scheduleService
}

func initResourceLookup(cfg *config.Config) service.ResourceLookup {
	if cfg.ResourcesURL != "" {
		cfg.Log.Info("Resolving resources through the resources API", "url", cfg.ResourcesURL)
		return resourcesclient.NewResourceClient(cfg.ResourcesURL, cfg.RequestTimeout)
	}
	return resourcesrepo.NewMongoResourceRepository(cfg)
}
