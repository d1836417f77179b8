package kafka

import (
	"context"
	"fmt"

	"packagesync/internal/entities"
	"packagesync/internal/handlers/kafka-consumer/package_events"
	"packagesync/internal/pkg/config"
	kafkaclient "packagesync/internal/pkg/kafka"
	"packagesync/pkg/logger"
)

// Stream читает события посылок из топика Kafka через consumer group.
type Stream struct {
	log logger.Logger
	cfg config.Kafka
}

func New(log logger.Logger, cfg config.Kafka) *Stream {
	return &Stream{log: log, cfg: cfg}
}

// Run поднимает consumer на время одного подключения и закрывает его при выходе.
func (s *Stream) Run(ctx context.Context, handle func(entities.PushEvent)) error {
	handler := package_events.New(s.log, package_events.Sink(handle))

	consumer, err := kafkaclient.NewConsumer(ctx, s.log, &s.cfg, handler)
	if err != nil {
		return entities.NewError(entities.KindNetwork, "kafka connect", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			s.log.Warn("failed to close kafka consumer", logger.NewField("error", err))
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return entities.NewError(entities.KindNetwork, "kafka consume", fmt.Errorf("topic %s: %w", s.cfg.Topic, err))
	}
	return nil
}
