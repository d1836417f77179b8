package tracking

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type Option func(*Service)

func WithLocationProvider(p LocationProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.location = p
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithSyncDefaults параметры синхронизации, если вызывающий не передал свои.
func WithSyncDefaults(opts entities.SyncOptions) Option {
	return func(s *Service) {
		s.syncDefaults = opts
	}
}

// Service контроллер поверх одного репозитория и клиента пакетной синхронизации.
// Syncer может быть nil, тогда синхронизация недоступна.
type Service struct {
	log          logger.Logger
	repository   Repository
	syncer       Syncer
	location     LocationProvider
	notifier     Notifier
	syncDefaults entities.SyncOptions

	mu          sync.Mutex
	unsubscribe func()
}

func New(log logger.Logger, repository Repository, syncer Syncer, opts ...Option) *Service {
	s := &Service{
		log:        log.With(logger.NewField("service", "tracking")),
		repository: repository,
		syncer:     syncer,
		location:   NoLocation{},
		notifier:   NopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error) {
	packages, err := s.repository.ListPackages(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

func (s *Service) GetPackage(ctx context.Context, id string) (*entities.Package, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}

	p, err := s.repository.GetPackageDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get package %s: %w", id, err)
	}
	return p, nil
}

// UpdateStatus меняет статус, дополняя контекст текущим положением, если оно известно
// и не передано явно. Ошибка определения положения не мешает смене статуса.
func (s *Service) UpdateStatus(
	ctx context.Context,
	id string,
	status entities.PackageStatusType,
	sc entities.StatusContext,
) (*entities.Package, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}

	if sc.Location == nil {
		sc.Location = s.currentLocation(ctx)
	}

	p, err := s.repository.UpdateStatus(ctx, id, status, sc)
	if err != nil {
		return nil, fmt.Errorf("update status of %s: %w", id, err)
	}
	return p, nil
}

// SyncDefaults параметры синхронизации по умолчанию.
func (s *Service) SyncDefaults() entities.SyncOptions {
	return s.syncDefaults
}

// SyncPackages выполняет пакетную синхронизацию и передает впервые увиденные
// посылки в репозиторий, чтобы кэши и подписчики увидели их.
func (s *Service) SyncPackages(ctx context.Context, opts *entities.SyncOptions) (*entities.SyncResult, error) {
	if s.syncer == nil {
		return nil, ErrSyncDisabled
	}

	syncOpts := s.syncDefaults
	if opts != nil {
		syncOpts = *opts
	}
	if syncOpts.Location == nil {
		syncOpts.Location = s.currentLocation(ctx)
	}

	result, err := s.syncer.Sync(ctx, syncOpts)
	if err != nil {
		return nil, fmt.Errorf("bulk sync: %w", err)
	}

	if len(result.NewPackages) > 0 {
		if _, err := s.repository.UpsertPackages(ctx, result.NewPackages); err != nil {
			return result, fmt.Errorf("store synced packages: %w", err)
		}

		s.notify(ctx, Notice{
			Title: "Синхронизация завершена",
			Body:  fmt.Sprintf("Новых посылок: %d, всего в ответе: %d", len(result.NewPackages), len(result.Packages)),
		})
	}

	return result, nil
}

// Watch подписывается на события репозитория и уведомляет о доставке и неудачах.
// Повторный вызов ничего не делает.
func (s *Service) Watch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return
	}
	s.unsubscribe = s.repository.Subscribe(s.onEvent)
}

// Close снимает подписку. Идемпотентен.
func (s *Service) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Service) onEvent(e entities.Event) {
	changed, ok := e.(entities.StatusChanged)
	if !ok || !changed.NewStatus.IsTerminal() || changed.OldStatus == changed.NewStatus {
		return
	}

	title := "Посылка доставлена"
	if changed.NewStatus == entities.StatusFailed {
		title = "Доставка не удалась"
	}

	body := changed.ID
	if changed.Package != nil && changed.Package.TrackingNumber != "" {
		body = changed.Package.TrackingNumber + ", " + changed.Package.RecipientName
	}

	s.notify(context.Background(), Notice{PackageID: changed.ID, Title: title, Body: body})
}

func (s *Service) currentLocation(ctx context.Context) *entities.Location {
	loc, err := s.location.CurrentLocation(ctx)
	if err != nil {
		s.log.Warn("location unavailable", logger.NewField("error", err))
		return nil
	}
	return loc
}

func (s *Service) notify(ctx context.Context, n Notice) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification failed",
			logger.NewField("error", err),
			logger.NewField("package_id", n.PackageID),
		)
	}
}
