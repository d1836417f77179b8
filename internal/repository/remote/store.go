package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"packagesync/internal/entities"
	"packagesync/internal/handlers/tasks/queue_drain"
	"packagesync/internal/repository"
	"packagesync/pkg/background"
	"packagesync/pkg/logger"
	"packagesync/pkg/retrier"
	"packagesync/pkg/retrier/backoff_adapter"
	"packagesync/pkg/ttlcache"
)

const (
	listPrefix   = "list:"
	detailPrefix = "detail:"

	DefaultCacheTTL       = 5 * time.Minute
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = time.Second
	DefaultReconnectDelay = 5 * time.Second
)

type Options struct {
	CacheTTL       time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	QueueMaxAge      time.Duration
	QueueMaxAttempts int

	// Push nil - realtime выключен.
	Push           PushStream
	ReconnectDelay time.Duration

	// OnQueueExpired диагностический хук для выброшенных из очереди мутаций.
	OnQueueExpired func(m entities.QueuedMutation, err error)

	Now func() time.Time
}

type listEntry struct {
	Filters  entities.Filters
	Packages []entities.Package
}

// Store хранилище посылок поверх REST сервиса: TTL кэш, повторы чтений,
// офлайн очередь мутаций и инвалидация по серверным событиям.
type Store struct {
	log       logger.Logger
	transport Transport
	push      PushStream
	subs      *repository.Subscribers
	reads     retrier.Retrier
	group     singleflight.Group

	lists   *ttlcache.Cache[listEntry]
	details *ttlcache.Cache[entities.Package]

	now            func() time.Time
	maxAge         time.Duration
	maxAttempts    int
	reconnectDelay time.Duration
	onExpired      func(entities.QueuedMutation, error)

	mu     sync.Mutex
	online bool
	queue  []entities.QueuedMutation

	drainMu sync.Mutex

	lifecycle  sync.Mutex
	closed     bool
	worker     *background.Worker
	pushCancel context.CancelFunc
	pushDone   chan struct{}
}

func New(log logger.Logger, transport Transport, opts Options) *Store {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = DefaultRetryAttempts
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if opts.QueueMaxAge <= 0 {
		opts.QueueMaxAge = entities.MutationMaxAge
	}
	if opts.QueueMaxAttempts <= 0 {
		opts.QueueMaxAttempts = entities.MutationMaxAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	storeLog := log.With(logger.NewField("store", "remote"))

	s := &Store{
		log:            storeLog,
		transport:      transport,
		push:           opts.Push,
		subs:           repository.NewSubscribers(storeLog),
		lists:          ttlcache.New[listEntry](opts.CacheTTL, opts.Now),
		details:        ttlcache.New[entities.Package](opts.CacheTTL, opts.Now),
		now:            opts.Now,
		maxAge:         opts.QueueMaxAge,
		maxAttempts:    opts.QueueMaxAttempts,
		reconnectDelay: opts.ReconnectDelay,
		onExpired:      opts.OnQueueExpired,
		online:         true,
	}

	cfg := retrier.LinearConfig(uint64(opts.RetryAttempts), opts.RetryBaseDelay, shouldRetryRead)
	cfg.OnRetry = func(err error, next time.Duration) {
		s.log.Warn("remote read failed, retrying",
			logger.NewField("error", err),
			logger.NewField("next", next),
		)
	}
	s.reads = backoff_adapter.New(cfg)

	StoreOnline.Set(1)
	return s
}

func (s *Store) Subscribe(fn func(entities.Event)) func() {
	return s.subs.Add(fn)
}

func (s *Store) ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error) {
	key := listPrefix + filters.Key()

	if entry, ok := s.lists.GetFresh(key); ok {
		CacheLookupsTotal.WithLabelValues("list", "hit").Inc()
		return entities.ClonePackages(entry.Packages), nil
	}
	CacheLookupsTotal.WithLabelValues("list", "miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		var fetched []entities.Package
		err := s.reads.ExecuteWithContext(ctx, func(ctx context.Context) error {
			out, err := s.transport.ListPackages(ctx, filters)
			if err != nil {
				return err
			}
			fetched = out
			return nil
		})
		if err != nil {
			return nil, err
		}

		if fetched == nil {
			fetched = []entities.Package{}
		}
		s.lists.Set(key, listEntry{Filters: copyFilters(filters), Packages: fetched})
		return fetched, nil
	})
	if err != nil {
		if entry, ok := s.lists.GetAny(key); ok {
			CacheLookupsTotal.WithLabelValues("list", "stale").Inc()
			s.log.Warn("serving stale package list",
				logger.NewField("filters", key),
				logger.NewField("stored_at", entry.StoredAt),
				logger.NewField("error", err),
			)
			return entities.ClonePackages(entry.Value.Packages), nil
		}
		return nil, classify(err)
	}

	return entities.ClonePackages(v.([]entities.Package)), nil
}

func (s *Store) GetPackageDetail(ctx context.Context, id string) (*entities.Package, error) {
	key := detailPrefix + id

	if p, ok := s.details.GetFresh(key); ok {
		CacheLookupsTotal.WithLabelValues("detail", "hit").Inc()
		out := p.Clone()
		return &out, nil
	}
	CacheLookupsTotal.WithLabelValues("detail", "miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		var fetched entities.Package
		err := s.reads.ExecuteWithContext(ctx, func(ctx context.Context) error {
			p, err := s.transport.GetPackage(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return emptyResult()
			}
			fetched = *p
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.details.Set(key, fetched)
		return fetched, nil
	})
	if err != nil {
		if isHTTPStatus(err, http.StatusNotFound) {
			s.details.Delete(key)
			nf := entities.NewNotFoundError(id)
			nf.StatusCode = http.StatusNotFound
			nf.Err = err
			return nil, nf
		}
		if entry, ok := s.details.GetAny(key); ok {
			CacheLookupsTotal.WithLabelValues("detail", "stale").Inc()
			s.log.Warn("serving stale package detail",
				logger.NewField("package_id", id),
				logger.NewField("stored_at", entry.StoredAt),
				logger.NewField("error", err),
			)
			out := entry.Value.Clone()
			return &out, nil
		}
		return nil, classify(err)
	}

	out := v.(entities.Package).Clone()
	return &out, nil
}

// Online false после сетевой ошибки записи и до успешного слива очереди.
func (s *Store) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// QueueLen количество отложенных мутаций.
func (s *Store) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// StartQueueDrain запускает периодический слив офлайн очереди. Повторный запуск игнорируется.
func (s *Store) StartQueueDrain(ctx context.Context, interval time.Duration) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.worker != nil {
		return nil
	}

	task := queue_drain.NewQueueDrain(s.log, s, interval)
	worker, err := background.New(ctx, s.log, []background.Task{task}, background.WithWarmup(false))
	if err != nil {
		return fmt.Errorf("start queue drain: %w", err)
	}
	s.worker = worker
	return nil
}

// StartRealtime поднимает единственный цикл чтения серверных событий.
// Повторный запуск игнорируется.
func (s *Store) StartRealtime(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.push == nil {
		return ErrRealtimeDisabled
	}
	if s.pushCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.pushCancel = cancel
	s.pushDone = done

	go s.runPush(ctx, done)
	return nil
}

// Close останавливает фоновые циклы и отписывает подписчиков. Идемпотентен.
func (s *Store) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.pushCancel != nil {
		s.pushCancel()
		<-s.pushDone
		s.pushCancel = nil
	}
	if s.worker != nil {
		s.worker.Stop()
		s.worker = nil
	}
	s.subs.Clear()
	return nil
}

func (s *Store) setOnline(online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if !changed {
		return
	}
	if online {
		StoreOnline.Set(1)
		s.log.Info("remote store back online")
	} else {
		StoreOnline.Set(0)
		s.log.Warn("remote store went offline")
	}
}

func copyFilters(f entities.Filters) entities.Filters {
	out := make(entities.Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

var errNoResult = errors.New("server returned no package")

func emptyResult() error {
	return entities.NewError(entities.KindInvalidResponse, "empty response", errNoResult)
}
