package repository

import (
	"fmt"
	"runtime/debug"
	"sync"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type subscriberLogger interface {
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Subscribers набор подписчиков одного хранилища.
// Рассылка синхронная: Emit возвращается после вызова всех подписчиков.
type Subscribers struct {
	log    subscriberLogger
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(entities.Event)
	order  []uint64
}

func NewSubscribers(log subscriberLogger) *Subscribers {
	return &Subscribers{
		log:  log,
		subs: make(map[uint64]func(entities.Event)),
	}
}

// Add регистрирует подписчика. Возвращаемая функция идемпотентна.
func (s *Subscribers) Add(fn func(entities.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subscribers) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[id]; !ok {
		return
	}
	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Emit доставляет событие каждому подписчику ровно один раз в порядке подписки.
// Паника подписчика логируется и не мешает остальным.
func (s *Subscribers) Emit(event entities.Event) {
	s.mu.RLock()
	fns := make([]func(entities.Event), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		s.deliver(fn, event)
	}
}

func (s *Subscribers) deliver(fn func(entities.Event), event entities.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.With(
				logger.NewField("event", entities.EventName(event)),
				logger.NewField("package_id", event.PackageID()),
				logger.NewField("panic", fmt.Sprint(r)),
				logger.NewField("stack", string(debug.Stack())),
			).Error("subscriber failed")
		}
	}()
	fn(event)
}

func (s *Subscribers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Clear отписывает всех.
func (s *Subscribers) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = make(map[uint64]func(entities.Event))
	s.order = nil
}
