package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"packagesync/internal/entities"
	"packagesync/internal/handlers/tasks/status_simulation"
	"packagesync/internal/repository"
	"packagesync/internal/repository/kvstore"
	"packagesync/pkg/background"
	"packagesync/pkg/logger"
	"packagesync/pkg/tx"
)

const (
	packagesKey = "packages"
	metaKey     = "packages_meta"

	DefaultMaxStorageSize = 1000
)

type Options struct {
	MaxStorageSize int
	SeedEnabled    bool
	Now            func() time.Time
	// Rand источник случайности симуляции, nil - случайное зерно.
	Rand *rand.Rand
	Tx   TxManager
}

type meta struct {
	Count   int       `json:"count"`
	SavedAt time.Time `json:"savedAt"`
}

// Store хранилище посылок без сети поверх долговременного KV.
// Коллекция целиком загружается при первом обращении и целиком сохраняется после каждой мутации.
type Store struct {
	log  logger.Logger
	kv   KVStore
	tx   TxManager
	subs *repository.Subscribers

	maxSize int
	seed    bool
	now     func() time.Time

	mu       sync.Mutex
	rng      *rand.Rand
	loaded   bool
	packages []entities.Package

	lifecycle sync.Mutex
	worker    *background.Worker
	closed    bool
}

func New(log logger.Logger, kv KVStore, opts Options) *Store {
	if opts.MaxStorageSize <= 0 {
		opts.MaxStorageSize = DefaultMaxStorageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Tx == nil {
		opts.Tx = tx.Nop{}
	}

	storeLog := log.With(logger.NewField("store", "local"))

	return &Store{
		log:     storeLog,
		kv:      kv,
		tx:      opts.Tx,
		subs:    repository.NewSubscribers(storeLog),
		maxSize: opts.MaxStorageSize,
		seed:    opts.SeedEnabled,
		now:     opts.Now,
		rng:     opts.Rand,
	}
}

// StartSimulation запускает фоновое продвижение статусов. Повторный запуск игнорируется.
func (s *Store) StartSimulation(ctx context.Context, interval time.Duration) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return errors.New("local store is closed")
	}
	if s.worker != nil {
		return nil
	}

	task := status_simulation.NewStatusSimulation(s.log, s, interval)
	worker, err := background.New(ctx, s.log, []background.Task{task}, background.WithWarmup(false))
	if err != nil {
		return fmt.Errorf("start status simulation: %w", err)
	}
	s.worker = worker
	return nil
}

// Close останавливает симуляцию и отписывает всех подписчиков. Идемпотентен.
func (s *Store) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.worker != nil {
		s.worker.Stop()
		s.worker = nil
	}
	s.subs.Clear()
	return nil
}

func (s *Store) Subscribe(fn func(entities.Event)) func() {
	return s.subs.Add(fn)
}

func (s *Store) ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error) {
	s.mu.Lock()
	events, err := s.ensureLoaded(ctx)
	var out []entities.Package
	if err == nil {
		out = entities.ClonePackages(filters.Apply(s.packages))
	}
	s.mu.Unlock()

	observe("list", err)
	if err != nil {
		return nil, err
	}

	s.emit(events)
	return out, nil
}

func (s *Store) GetPackageDetail(ctx context.Context, id string) (*entities.Package, error) {
	s.mu.Lock()
	events, err := s.ensureLoaded(ctx)
	var out *entities.Package
	if err == nil {
		if idx := s.indexOf(id); idx >= 0 {
			p := s.packages[idx].Clone()
			out = &p
		} else {
			err = entities.NewNotFoundError(id)
		}
	}
	s.mu.Unlock()

	observe("detail", err)
	s.emit(events)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateStatus(
	ctx context.Context,
	id string,
	status entities.PackageStatusType,
	sc entities.StatusContext,
) (*entities.Package, error) {
	if !status.IsValid() {
		return nil, entities.NewError(entities.KindInvalidInput, fmt.Sprintf("unknown status %q", status), nil)
	}

	updated, events, err := s.mutate(ctx, func(packages []entities.Package) ([]entities.Package, *entities.Package, []entities.Event, error) {
		idx := indexOf(packages, id)
		if idx < 0 {
			return nil, nil, nil, entities.NewNotFoundError(id)
		}

		p := packages[idx].ApplyStatus(status, sc, s.now())
		packages[idx] = p

		return packages, &p, []entities.Event{entities.PackageUpdated{Package: p.Clone()}}, nil
	})
	observe("update_status", err)
	if err != nil {
		return nil, err
	}

	s.emit(events)
	return updated, nil
}

// UpsertPackages вставляет новые посылки и целиком заменяет существующие по ID.
func (s *Store) UpsertPackages(ctx context.Context, incoming []entities.Package) ([]entities.Package, error) {
	for _, p := range incoming {
		if p.ID == "" {
			return nil, entities.NewError(entities.KindInvalidInput, "package without id", nil)
		}
	}

	var stored []entities.Package
	_, events, err := s.mutate(ctx, func(packages []entities.Package) ([]entities.Package, *entities.Package, []entities.Event, error) {
		now := s.now()
		events := make([]entities.Event, 0, len(incoming))
		stored = make([]entities.Package, 0, len(incoming))

		for _, p := range incoming {
			p = p.Clone()
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			if p.UpdatedAt.IsZero() {
				p.UpdatedAt = now
			}
			if p.MaxAttempts <= 0 {
				p.MaxAttempts = entities.DefaultMaxAttempts
			}

			if idx := indexOf(packages, p.ID); idx >= 0 {
				packages[idx] = p
				events = append(events, entities.PackageUpdated{Package: p.Clone()})
			} else {
				packages = append(packages, p)
				events = append(events, entities.PackageAdded{Package: p.Clone()})
			}
			stored = append(stored, p.Clone())
		}
		return packages, nil, events, nil
	})
	observe("upsert", err)
	if err != nil {
		return nil, err
	}

	s.emit(events)
	return stored, nil
}

// AdvanceRandom выбирает случайную нефинальную посылку и продвигает ее ровно на одно ребро автомата.
func (s *Store) AdvanceRandom(ctx context.Context) (*entities.Package, error) {
	updated, events, err := s.mutate(ctx, func(packages []entities.Package) ([]entities.Package, *entities.Package, []entities.Event, error) {
		candidates := make([]int, 0, len(packages))
		for i, p := range packages {
			if !p.Status.IsTerminal() && p.Status.IsValid() {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return nil, nil, nil, nil
		}

		idx := candidates[s.rng.IntN(len(candidates))]
		current := packages[idx]
		next, ok := entities.NextStatus(current.Status, s.rng.Float64())
		if !ok {
			return nil, nil, nil, nil
		}

		p := current.ApplyStatus(next, entities.StatusContext{}, s.now())
		packages[idx] = p

		return packages, &p, []entities.Event{
			entities.PackageUpdated{Package: p.Clone()},
		}, nil
	})
	observe("advance", err)
	if err != nil {
		return nil, err
	}

	s.emit(events)
	return updated, nil
}

type mutation func(packages []entities.Package) ([]entities.Package, *entities.Package, []entities.Event, error)

// mutate применяет fn к копии коллекции, сохраняет результат и только потом фиксирует его в памяти.
// nil коллекция от fn означает "изменений нет".
func (s *Store) mutate(ctx context.Context, fn mutation) (*entities.Package, []entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seedEvents, err := s.ensureLoaded(ctx)
	if err != nil {
		return nil, nil, err
	}

	working := make([]entities.Package, len(s.packages))
	copy(working, s.packages)

	next, result, events, err := fn(working)
	if err != nil {
		return nil, nil, err
	}
	if next == nil {
		return nil, seedEvents, nil
	}

	next, evicted := s.evict(next)
	for _, id := range evicted {
		events = append(events, entities.PackageRemoved{ID: id})
	}

	if err := s.persist(ctx, next); err != nil {
		return nil, nil, err
	}
	s.packages = next
	StorePackages.Set(float64(len(next)))

	if result != nil {
		out := result.Clone()
		result = &out
	}
	return result, append(seedEvents, events...), nil
}

// ensureLoaded вызывается под s.mu. Возвращает события засева, если он произошел.
func (s *Store) ensureLoaded(ctx context.Context) ([]entities.Event, error) {
	if s.loaded {
		return nil, nil
	}

	data, err := s.kv.Get(ctx, packagesKey)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		data = nil
	case err != nil:
		return nil, entities.NewError(entities.KindStorage, "load packages", err)
	}

	var packages []entities.Package
	if len(data) > 0 {
		if err := json.Unmarshal(data, &packages); err != nil {
			return nil, entities.NewError(entities.KindStorage, "decode packages", err)
		}
	}

	var events []entities.Event
	if len(packages) == 0 && s.seed {
		packages = SeedPackages(s.now())
		packages, _ = s.evict(packages)
		if err := s.persist(ctx, packages); err != nil {
			return nil, err
		}
		s.log.With(
			logger.NewField("count", len(packages)),
		).Info("seeded synthetic packages")
	}

	if len(packages) > s.maxSize {
		var evicted []string
		packages, evicted = s.evict(packages)
		if err := s.persist(ctx, packages); err != nil {
			return nil, err
		}
		for _, id := range evicted {
			events = append(events, entities.PackageRemoved{ID: id})
		}
	}

	s.packages = packages
	s.loaded = true
	StorePackages.Set(float64(len(packages)))
	return events, nil
}

// evict удаляет самые старые по CreatedAt посылки сверх лимита. Порядок остальных сохраняется.
func (s *Store) evict(packages []entities.Package) ([]entities.Package, []string) {
	excess := len(packages) - s.maxSize
	if excess <= 0 {
		return packages, nil
	}

	order := make([]int, len(packages))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return packages[order[a]].CreatedAt.Before(packages[order[b]].CreatedAt)
	})

	drop := make(map[int]struct{}, excess)
	evicted := make([]string, 0, excess)
	for _, i := range order[:excess] {
		drop[i] = struct{}{}
		evicted = append(evicted, packages[i].ID)
	}

	kept := make([]entities.Package, 0, s.maxSize)
	for i, p := range packages {
		if _, ok := drop[i]; !ok {
			kept = append(kept, p)
		}
	}

	StoreEvictionsTotal.Add(float64(excess))
	s.log.With(
		logger.NewField("evicted", evicted),
		logger.NewField("max_storage_size", s.maxSize),
	).Info("evicted oldest packages")

	return kept, evicted
}

func (s *Store) persist(ctx context.Context, packages []entities.Package) error {
	data, err := json.Marshal(packages)
	if err != nil {
		return entities.NewError(entities.KindStorage, "encode packages", err)
	}
	metaData, err := json.Marshal(meta{Count: len(packages), SavedAt: s.now()})
	if err != nil {
		return entities.NewError(entities.KindStorage, "encode packages meta", err)
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.kv.Set(ctx, packagesKey, data); err != nil {
			return err
		}
		return s.kv.Set(ctx, metaKey, metaData)
	})
	if err != nil {
		return entities.NewError(entities.KindStorage, "persist packages", err)
	}
	return nil
}

func (s *Store) emit(events []entities.Event) {
	for _, e := range events {
		s.subs.Emit(e)
	}
}

func (s *Store) indexOf(id string) int {
	return indexOf(s.packages, id)
}

func indexOf(packages []entities.Package, id string) int {
	for i := range packages {
		if packages[i].ID == id {
			return i
		}
	}
	return -1
}
