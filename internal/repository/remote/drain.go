package remote

import (
	"context"
	"net/http"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

// DrainQueue переигрывает очередь в порядке постановки. Офлайн сначала проверяет
// связь через Ping. Слив останавливается на первой неудачной мутации: она и все
// следующие за ней возвращаются в голову очереди, порядок не меняется.
// Просроченные мутации выбрасываются с диагностикой OfflineQueueExpired,
// после серверной ошибки такой мутации слив продолжается.
// Связь считается восстановленной только после полного слива.
func (s *Store) DrainQueue(ctx context.Context) (int, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	s.mu.Lock()
	online, pending := s.online, len(s.queue)
	s.mu.Unlock()

	if online && pending == 0 {
		return 0, nil
	}

	if !online {
		if err := s.transport.Ping(ctx); err != nil {
			s.log.Debug("server still unreachable", logger.NewField("error", err))
			return 0, nil
		}
	}

	batch := s.takeQueue()

	var (
		requeue  []entities.QueuedMutation
		replayed int
		lost     bool
	)
	for i, m := range batch {
		meta := m.Meta()
		if meta.Expired(s.now(), s.maxAge, s.maxAttempts) {
			s.expire(m, nil)
			continue
		}

		err := s.replay(ctx, m)
		if err == nil {
			replayed++
			QueueReplayedTotal.WithLabelValues(m.Kind(), "ok").Inc()
			continue
		}
		QueueReplayedTotal.WithLabelValues(m.Kind(), "error").Inc()

		meta.AttemptCount++
		lost = isConnectivity(err)
		if meta.Expired(s.now(), s.maxAge, s.maxAttempts) {
			s.expire(m, err)
			if !lost {
				continue
			}
		} else {
			requeue = append(requeue, m)
		}

		requeue = append(requeue, batch[i+1:]...)
		break
	}

	s.mu.Lock()
	s.queue = append(requeue, s.queue...)
	depth := len(s.queue)
	s.mu.Unlock()

	QueueDepth.Set(float64(depth))
	s.setOnline(!lost && depth == 0)

	return replayed, nil
}

func (s *Store) takeQueue() []entities.QueuedMutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.queue
	s.queue = nil
	return batch
}

func (s *Store) expire(m entities.QueuedMutation, cause error) {
	meta := m.Meta()
	QueueDroppedTotal.WithLabelValues(m.Kind()).Inc()

	err := entities.NewError(entities.KindQueueExpired, "queued "+m.Kind()+" for "+meta.TargetID+" dropped", cause)
	s.log.With(
		logger.NewField("mutation_id", meta.ID.String()),
		logger.NewField("kind", m.Kind()),
		logger.NewField("package_id", meta.TargetID),
		logger.NewField("attempts", meta.AttemptCount),
		logger.NewField("enqueued_at", meta.EnqueuedAt),
	).Error("offline mutation expired")

	if s.onExpired != nil {
		s.onExpired(m, err)
	}
}

// replay отправляет одну мутацию и подтверждает ее результат в кэше.
func (s *Store) replay(ctx context.Context, m entities.QueuedMutation) error {
	switch mut := m.(type) {
	case *entities.UpdateStatusMutation:
		p, err := s.transport.UpdateStatus(ctx, mut.TargetID, mut.Status, mut.Context)
		if err != nil {
			return err
		}
		if p == nil {
			return emptyResult()
		}
		s.confirm(*p)
		return nil

	case *entities.CreateMutation:
		p, err := s.transport.CreatePackage(ctx, mut.Package)
		if err != nil {
			return err
		}
		if p == nil {
			return emptyResult()
		}
		s.confirm(*p)
		return nil

	case *entities.DeleteMutation:
		err := s.transport.DeletePackage(ctx, mut.TargetID)
		if err != nil && !isHTTPStatus(err, http.StatusNotFound) {
			return err
		}
		s.lists.DeletePrefix(listPrefix)
		return nil

	case *entities.BatchUpdateMutation:
		result, err := s.transport.BatchUpdateStatus(ctx, mut.Updates)
		if err != nil {
			return err
		}
		for _, p := range result {
			s.confirm(p)
		}
		return nil

	default:
		return entities.NewError(entities.KindInvalidInput, "unknown queued mutation "+m.Kind(), nil)
	}
}

// confirm заменяет оптимистичную версию серверной и сообщает подписчикам.
func (s *Store) confirm(p entities.Package) {
	s.storeServerResult(p)
	s.subs.Emit(entities.PackageUpdated{Package: p.Clone()})
}
