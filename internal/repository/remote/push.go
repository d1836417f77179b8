package remote

import (
	"context"
	"time"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

// runPush держит одно соединение с потоком событий и переподключается
// через фиксированную паузу, пока ctx не отменен.
func (s *Store) runPush(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for {
		err := s.push.Run(ctx, s.handlePush)
		if ctx.Err() != nil {
			return
		}

		PushReconnectsTotal.Inc()
		s.log.Warn("push stream disconnected, reconnecting",
			logger.NewField("error", err),
			logger.NewField("delay", s.reconnectDelay),
		)

		timer := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// handlePush инвалидирует деталь и все списки, затем пересылает событие подписчикам.
func (s *Store) handlePush(ev entities.PushEvent) {
	id := ev.PackageID()

	s.details.Delete(detailPrefix + id)
	s.lists.DeletePrefix(listPrefix)

	event := ev.Event()
	PushEventsTotal.WithLabelValues(entities.EventName(event)).Inc()
	s.log.Debug("push event", logger.NewField("package_id", id), logger.NewField("event", entities.EventName(event)))

	s.subs.Emit(event)
}
