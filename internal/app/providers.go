package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	trmsql "github.com/avito-tech/go-transaction-manager/sql"
	"packagesync/internal/entities"
	"packagesync/internal/gateway/http/bulksync"
	"packagesync/internal/gateway/http/packages"
	pushkafka "packagesync/internal/gateway/push/kafka"
	pushws "packagesync/internal/gateway/push/websocket"
	"packagesync/internal/handlers/rest/healthcheck_head"
	"packagesync/internal/pkg/config"
	"packagesync/internal/pkg/sqlite"
	"packagesync/internal/repository"
	"packagesync/internal/repository/kvstore"
	"packagesync/internal/repository/local"
	"packagesync/internal/repository/remote"
	"packagesync/internal/service/tracking"
	"packagesync/pkg/logger"
	"packagesync/pkg/querier"
	"packagesync/pkg/token_bucket"
	"packagesync/pkg/tx"
)

// BackgroundEnabled запускать ли фоновые задачи хранилищ: симуляцию, слив очереди, realtime.
// Разовые команды CLI работают без них.
type BackgroundEnabled bool

type Application struct {
	Tracking   *tracking.Service
	Repository repository.PackageRepository
	// Connectivity nil для локального хранилища.
	Connectivity healthcheck_head.Connectivity
}

// Storage долговременное хранилище локального режима. nil в remote режиме.
type Storage struct {
	KV local.KVStore
	Tx local.TxManager
}

func provideStorage(ctx context.Context, log logger.Logger, cfg *config.Config) (*Storage, func(), error) {
	if cfg.Mode != config.ModeLocal {
		return nil, func() {}, nil
	}

	if cfg.Storage.Driver == config.StorageMemory {
		return &Storage{KV: kvstore.NewMemory(), Tx: tx.Nop{}}, func() {}, nil
	}

	db, err := sqlite.Open(ctx, log, &cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close sqlite", logger.NewField("error", err))
		}
	}

	return &Storage{
		KV: kvstore.NewSQLite(querier.New(db, trmsql.DefaultCtxGetter)),
		Tx: tx.New(db),
	}, cleanup, nil
}

func provideRepository(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	storage *Storage,
	background BackgroundEnabled,
) (repository.PackageRepository, func(), error) {
	var (
		repo repository.PackageRepository
		err  error
	)
	switch cfg.Mode {
	case config.ModeRemote:
		repo, err = provideRemoteStore(ctx, log, cfg, background)
	default:
		repo, err = provideLocalStore(ctx, log, cfg, storage, background)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := repo.Close(); err != nil {
			log.Error("failed to close repository", logger.NewField("error", err))
		}
	}
	return repo, cleanup, nil
}

func provideLocalStore(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	storage *Storage,
	background BackgroundEnabled,
) (*local.Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("local store: storage is not configured")
	}

	store := local.New(log, storage.KV, local.Options{
		MaxStorageSize: cfg.Storage.MaxSize,
		SeedEnabled:    cfg.Storage.SeedEnabled,
		Tx:             storage.Tx,
	})

	if bool(background) && cfg.Tasks.StatusSimulationEnabled {
		if err := store.StartSimulation(ctx, cfg.Tasks.StatusSimulationInterval); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("local store: %w", err)
		}
	}
	return store, nil
}

func provideRemoteStore(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	background BackgroundEnabled,
) (*remote.Store, error) {
	gateway, err := packages.New(cfg.Remote.BaseURL, &http.Client{}, cfg.Remote.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("packages gateway: %w", err)
	}

	store := remote.New(log, gateway, remote.Options{
		CacheTTL:         cfg.Remote.CacheTTL,
		RetryAttempts:    cfg.Remote.RetryAttempts,
		RetryBaseDelay:   cfg.Remote.RetryBaseDelay,
		QueueMaxAge:      cfg.Remote.QueueMaxAge,
		QueueMaxAttempts: cfg.Remote.QueueMaxAttempts,
		Push:             providePushStream(log, cfg),
		ReconnectDelay:   cfg.Push.ReconnectDelay,
	})

	if !background {
		return store, nil
	}

	if err := store.StartQueueDrain(ctx, cfg.Tasks.QueueDrainInterval); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("remote store: %w", err)
	}
	if cfg.Push.Transport != config.PushNone {
		if err := store.StartRealtime(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("remote store: %w", err)
		}
	}
	return store, nil
}

// providePushStream nil интерфейс, если realtime выключен.
func providePushStream(log logger.Logger, cfg *config.Config) remote.PushStream {
	switch cfg.Push.Transport {
	case config.PushWebSocket:
		return pushws.New(log.With(logger.NewField("push", "websocket")), cfg.Push.WebSocketURL)
	case config.PushKafka:
		return pushkafka.New(log.With(logger.NewField("push", "kafka")), cfg.Push.Kafka)
	default:
		return nil
	}
}

// provideSyncer nil интерфейс, если адрес синхронизации не задан.
func provideSyncer(log logger.Logger, cfg *config.Config) tracking.Syncer {
	if cfg.BulkSync.URL == "" {
		return nil
	}

	return bulksync.New(log, &http.Client{}, cfg.BulkSync.URL, bulksync.Options{
		Timeout: cfg.BulkSync.Timeout,
		Limiter: token_bucket.NewTokenBucket(cfg.BulkSync.RateCapacity, cfg.BulkSync.RateRefillPerSec),
		Fallback: entities.Coordinates{
			Latitude:  cfg.BulkSync.FallbackLatitude,
			Longitude: cfg.BulkSync.FallbackLongitude,
		},
		JitterDegrees: cfg.BulkSync.JitterDegrees,
	})
}

func provideLocationProvider(cfg *config.Config) tracking.LocationProvider {
	if !cfg.Device.LocationSet {
		return tracking.NoLocation{}
	}
	return tracking.StaticLocation{Location: entities.Location{
		Latitude:  cfg.Device.Latitude,
		Longitude: cfg.Device.Longitude,
		Accuracy:  cfg.Device.Accuracy,
		Timestamp: time.Now(),
	}}
}

func provideTrackingService(
	log logger.Logger,
	repo tracking.Repository,
	syncer tracking.Syncer,
	location tracking.LocationProvider,
	cfg *config.Config,
	background BackgroundEnabled,
) (*tracking.Service, func()) {
	service := tracking.New(log, repo, syncer,
		tracking.WithLocationProvider(location),
		tracking.WithNotifier(tracking.LogNotifier{Log: log}),
		tracking.WithSyncDefaults(entities.SyncOptions{
			GeocodingReadyOnly: cfg.BulkSync.GeocodingReadyOnly,
			MinRecordAgeHours:  cfg.BulkSync.MinRecordAgeHours,
			Limit:              cfg.BulkSync.Limit,
			IncludeMetadata:    cfg.BulkSync.IncludeMetadata,
		}),
	)
	if background {
		service.Watch()
	}
	return service, service.Close
}

func provideConnectivity(repo repository.PackageRepository) healthcheck_head.Connectivity {
	if c, ok := repo.(healthcheck_head.Connectivity); ok {
		return c
	}
	return nil
}
