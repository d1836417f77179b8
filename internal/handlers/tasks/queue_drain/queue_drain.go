package queue_drain

import (
	"context"
	"time"

	"packagesync/pkg/logger"
)

type Service interface {
	// DrainQueue переигрывает офлайн очередь и возвращает число успешно отправленных мутаций.
	DrainQueue(ctx context.Context) (int, error)
}

type QueueDrain struct {
	log      logger.Logger
	service  Service
	interval time.Duration
}

func NewQueueDrain(log logger.Logger, service Service, interval time.Duration) *QueueDrain {
	return &QueueDrain{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (d *QueueDrain) TTL() time.Duration {
	return d.interval
}

func (d *QueueDrain) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	replayed, err := d.service.DrainQueue(ctxWithTimeout)

	if replayed > 0 {
		d.log.With(
			logger.NewField("replayed_mutations", replayed),
		).Info("queue drain")
	}

	return err
}

func (d *QueueDrain) Info() string {
	return "offline queue drain"
}
