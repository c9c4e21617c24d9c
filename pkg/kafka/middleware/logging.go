package kafkamiddleware

import (
	"context"
	"time"

	"clubhouse/pkg/kafka"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/metrics"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"correlation_id", msg.CorrelationID(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Error("Failed to publish event", append(attrs, "error", err)...)
		} else {
			log.Debug("Published event", attrs...)
		}
		return err
	}
}

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		m.RecordPublish(msg.Topic, err, time.Since(start))
		return err
	}
}
