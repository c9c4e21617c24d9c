package events

import (
	"context"
	"time"

	"clubhouse/pkg/kafka"
	kafkaconfig "clubhouse/pkg/kafka/config"
	kafkamiddleware "clubhouse/pkg/kafka/middleware"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"
)

const SchemaVersion = "1"

const (
	DomainResources   = "resources"
	DomainSchedules   = "schedules"
	DomainMarketplace = "marketplace"
)

const (
	ResourceCreated = "resource.created"
	ResourceUpdated = "resource.updated"

	ScheduleCreated     = "schedule.created"
	ScheduleRescheduled = "schedule.rescheduled"
	ScheduleCancelled   = "schedule.cancelled"

	ItemSubmitted     = "marketplace.item_submitted"
	ItemFlagged       = "marketplace.item_flagged"
	ItemStatusChanged = "marketplace.status_changed"
	ItemFlagResolved  = "marketplace.flag_resolved"
	ItemRestored      = "marketplace.item_restored"
	ItemDeleted       = "marketplace.item_deleted"
)

type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher emits domain events after a change has been persisted.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage(time.Now()).
		WithKey(event.Key).
		WithValue(event.Payload).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// New returns a Kafka-backed publisher for domain, or Noop when Kafka is disabled.
func New(cfg *kafkaconfig.Config, domain, source string, log *logger.Logger, m *metrics.Metrics) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		log.Info("Event publishing disabled")
		return Noop{}, nil
	}

	producer, err := kafka.NewProducer(cfg, cfg.Topic(domain), log)
	if err != nil {
		return nil, err
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))

	cfg.LogConfiguration(log.Info)
	log.Info("Event publishing enabled", "topic", producer.Topic())
	return NewKafkaPublisher(producer, source), nil
}
