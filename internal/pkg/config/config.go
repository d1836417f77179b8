package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type PushTransport string

const (
	PushNone      PushTransport = "none"
	PushWebSocket PushTransport = "websocket"
	PushKafka     PushTransport = "kafka"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type (
	Tasks struct {
		StatusSimulationEnabled  bool
		StatusSimulationInterval time.Duration
		QueueDrainInterval       time.Duration
	}

	HTTPServer struct {
		Port             string
		RequestTimeout   time.Duration // middleware timeout
		RateLimiterQPS   int           // middleware rate limiter capacity
		RateLimiterBurst int           // middleware rate limiter refill
		PprofEnabled     bool
		PprofPort        string
	}

	Storage struct {
		Driver      string
		Path        string
		MaxSize     int
		SeedEnabled bool
	}

	Remote struct {
		BaseURL          string
		RequestTimeout   time.Duration
		CacheTTL         time.Duration
		RetryAttempts    int
		RetryBaseDelay   time.Duration
		QueueMaxAge      time.Duration
		QueueMaxAttempts int
	}

	Push struct {
		Transport      PushTransport
		WebSocketURL   string
		ReconnectDelay time.Duration
		Kafka          Kafka
	}

	Kafka struct {
		Brokers       string
		Topic         string
		ConsumerGroup string
		Sarama        Sarama
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	BulkSync struct {
		URL                string
		Timeout            time.Duration
		Limit              int
		GeocodingReadyOnly bool
		MinRecordAgeHours  int
		IncludeMetadata    bool
		RateCapacity       int
		RateRefillPerSec   float64
		FallbackLatitude   float64
		FallbackLongitude  float64
		JitterDegrees      float64
	}

	// Device фиксированное положение устройства. Без него запросы идут без location.
	Device struct {
		LocationSet bool
		Latitude    float64
		Longitude   float64
		Accuracy    float64
	}

	Log struct {
		Level string
	}

	Config struct {
		Mode     Mode
		Tasks    Tasks
		Server   HTTPServer
		Storage  Storage
		Remote   Remote
		Push     Push
		BulkSync BulkSync
		Device   Device
		Log      Log
	}
)

// Default значения, которые применяются к незаданным переменным окружения.
func Default() *Config {
	return &Config{
		Mode: ModeLocal,
		Tasks: Tasks{
			StatusSimulationInterval: 30 * time.Second,
			QueueDrainInterval:       15 * time.Second,
		},
		Server: HTTPServer{
			Port:             "8080",
			RequestTimeout:   30 * time.Second,
			RateLimiterQPS:   100,
			RateLimiterBurst: 100,
		},
		Storage: Storage{
			Driver:      StorageSQLite,
			Path:        "packagesync.db",
			MaxSize:     1000,
			SeedEnabled: true,
		},
		Remote: Remote{
			RequestTimeout:   10 * time.Second,
			CacheTTL:         5 * time.Minute,
			RetryAttempts:    3,
			RetryBaseDelay:   time.Second,
			QueueMaxAge:      time.Hour,
			QueueMaxAttempts: 3,
		},
		Push: Push{
			Transport:      PushNone,
			ReconnectDelay: 5 * time.Second,
			Kafka: Kafka{
				Topic:         "package.events",
				ConsumerGroup: "packagesync",
				Sarama: Sarama{
					Version: "3.6.0",
				},
			},
		},
		BulkSync: BulkSync{
			Timeout:            20 * time.Second,
			Limit:              100,
			GeocodingReadyOnly: true,
			IncludeMetadata:    true,
			RateCapacity:       3,
			RateRefillPerSec:   0.2,
			FallbackLatitude:   55.7558,
			FallbackLongitude:  37.6173,
			JitterDegrees:      0.01,
		},
		Log: Log{
			Level: "info",
		},
	}
}

func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	cfg := Default()

	setString(&cfg.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("PACKAGESYNC_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}

	// tasks
	if err := setBool(&cfg.Tasks.StatusSimulationEnabled, "BACKGROUND_STATUS_SIMULATION_ENABLED"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setDuration(&cfg.Tasks.StatusSimulationInterval, "BACKGROUND_STATUS_SIMULATION_INTERVAL"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setDuration(&cfg.Tasks.QueueDrainInterval, "BACKGROUND_QUEUE_DRAIN_INTERVAL"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// server
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.PprofPort, "PPROF_PORT")
	if err := setDuration(&cfg.Server.RequestTimeout, "MIDDLEWARE_REQUEST_TIMEOUT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.Server.RateLimiterQPS, "MIDDLEWARE_RATE_LIMIT_QPS"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.Server.RateLimiterBurst, "MIDDLEWARE_RATE_LIMIT_BURST"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setBool(&cfg.Server.PprofEnabled, "PPROF_ENABLED"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// storage
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.Path, "STORAGE_PATH")
	if err := setInt(&cfg.Storage.MaxSize, "STORAGE_MAX_SIZE"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setBool(&cfg.Storage.SeedEnabled, "STORAGE_SEED_ENABLED"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// remote
	setString(&cfg.Remote.BaseURL, "REMOTE_BASE_URL")
	if err := setDuration(&cfg.Remote.RequestTimeout, "REMOTE_REQUEST_TIMEOUT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setDuration(&cfg.Remote.CacheTTL, "REMOTE_CACHE_TTL"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.Remote.RetryAttempts, "REMOTE_RETRY_ATTEMPTS"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setDuration(&cfg.Remote.RetryBaseDelay, "REMOTE_RETRY_BASE_DELAY"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setDuration(&cfg.Remote.QueueMaxAge, "REMOTE_QUEUE_MAX_AGE"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.Remote.QueueMaxAttempts, "REMOTE_QUEUE_MAX_ATTEMPTS"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// push
	if v := os.Getenv("PUSH_TRANSPORT"); v != "" {
		cfg.Push.Transport = PushTransport(v)
	}
	setString(&cfg.Push.WebSocketURL, "PUSH_WEBSOCKET_URL")
	if err := setDuration(&cfg.Push.ReconnectDelay, "PUSH_RECONNECT_DELAY"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setString(&cfg.Push.Kafka.Brokers, "KAFKA_BROKERS")
	setString(&cfg.Push.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Push.Kafka.ConsumerGroup, "KAFKA_CONSUMER_GROUP")
	setString(&cfg.Push.Kafka.Sarama.Version, "KAFKA_SARAMA_VERSION")
	if err := setBool(&cfg.Push.Kafka.Sarama.ConsumerOffsetsAutocommit, "KAFKA_SARAMA_OFFSETS_AUTOCOMMIT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// bulk sync
	setString(&cfg.BulkSync.URL, "BULK_SYNC_URL")
	if err := setDuration(&cfg.BulkSync.Timeout, "BULK_SYNC_TIMEOUT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.BulkSync.Limit, "BULK_SYNC_LIMIT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setBool(&cfg.BulkSync.GeocodingReadyOnly, "BULK_SYNC_GEOCODING_READY_ONLY"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.BulkSync.MinRecordAgeHours, "BULK_SYNC_MIN_RECORD_AGE_HOURS"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setBool(&cfg.BulkSync.IncludeMetadata, "BULK_SYNC_INCLUDE_METADATA"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setInt(&cfg.BulkSync.RateCapacity, "BULK_SYNC_RATE_CAPACITY"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.BulkSync.RateRefillPerSec, "BULK_SYNC_RATE_REFILL_PER_SEC"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.BulkSync.FallbackLatitude, "BULK_SYNC_FALLBACK_LAT"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.BulkSync.FallbackLongitude, "BULK_SYNC_FALLBACK_LON"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.BulkSync.JitterDegrees, "BULK_SYNC_JITTER_DEGREES"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// device
	if os.Getenv("DEVICE_LATITUDE") != "" || os.Getenv("DEVICE_LONGITUDE") != "" {
		cfg.Device.LocationSet = true
	}
	if err := setFloat(&cfg.Device.Latitude, "DEVICE_LATITUDE"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.Device.Longitude, "DEVICE_LONGITUDE"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := setFloat(&cfg.Device.Accuracy, "DEVICE_LOCATION_ACCURACY"); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port is required (set via PORT env variable)")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT must be positive")
	}
	if cfg.Server.RateLimiterQPS <= 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_QPS must be positive")
	}
	if cfg.Server.RateLimiterBurst <= 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST must be positive")
	}
	if cfg.Server.PprofPort == "" && cfg.Server.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}

	switch cfg.Mode {
	case ModeLocal:
		if err := validateStorage(cfg); err != nil {
			return err
		}
	case ModeRemote:
		if err := validateRemote(cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("PACKAGESYNC_MODE must be %q or %q, got %q", ModeLocal, ModeRemote, cfg.Mode)
	}

	if cfg.BulkSync.Timeout <= 0 {
		return errors.New("BULK_SYNC_TIMEOUT must be positive")
	}
	if cfg.BulkSync.Limit <= 0 {
		return errors.New("BULK_SYNC_LIMIT must be positive")
	}
	if cfg.BulkSync.RateCapacity <= 0 {
		return errors.New("BULK_SYNC_RATE_CAPACITY must be positive")
	}
	if cfg.BulkSync.JitterDegrees < 0 {
		return errors.New("BULK_SYNC_JITTER_DEGREES must not be negative")
	}
	if cfg.Device.LocationSet {
		if cfg.Device.Latitude < -90 || cfg.Device.Latitude > 90 {
			return errors.New("DEVICE_LATITUDE must be within [-90, 90]")
		}
		if cfg.Device.Longitude < -180 || cfg.Device.Longitude > 180 {
			return errors.New("DEVICE_LONGITUDE must be within [-180, 180]")
		}
	}

	return nil
}

func validateStorage(cfg *Config) error {
	switch cfg.Storage.Driver {
	case StorageSQLite:
		if cfg.Storage.Path == "" {
			return errors.New("STORAGE_PATH is required for sqlite storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageSQLite, StorageMemory, cfg.Storage.Driver)
	}
	if cfg.Storage.MaxSize <= 0 {
		return errors.New("STORAGE_MAX_SIZE must be positive")
	}
	if cfg.Tasks.StatusSimulationEnabled && cfg.Tasks.StatusSimulationInterval <= 0 {
		return errors.New("BACKGROUND_STATUS_SIMULATION_INTERVAL is required")
	}
	return nil
}

func validateRemote(cfg *Config) error {
	if cfg.Remote.BaseURL == "" {
		return errors.New("REMOTE_BASE_URL is required")
	}
	if cfg.Remote.RequestTimeout <= 0 {
		return errors.New("REMOTE_REQUEST_TIMEOUT must be positive")
	}
	if cfg.Remote.CacheTTL <= 0 {
		return errors.New("REMOTE_CACHE_TTL must be positive")
	}
	if cfg.Remote.RetryAttempts <= 0 {
		return errors.New("REMOTE_RETRY_ATTEMPTS must be positive")
	}
	if cfg.Remote.QueueMaxAttempts <= 0 {
		return errors.New("REMOTE_QUEUE_MAX_ATTEMPTS must be positive")
	}
	if cfg.Tasks.QueueDrainInterval <= 0 {
		return errors.New("BACKGROUND_QUEUE_DRAIN_INTERVAL is required")
	}

	switch cfg.Push.Transport {
	case PushNone:
	case PushWebSocket:
		if cfg.Push.WebSocketURL == "" {
			return errors.New("PUSH_WEBSOCKET_URL is required")
		}
	case PushKafka:
		if cfg.Push.Kafka.Brokers == "" {
			return errors.New("KAFKA_BROKERS is required")
		}
		if cfg.Push.Kafka.Topic == "" {
			return errors.New("KAFKA_TOPIC is required")
		}
		if cfg.Push.Kafka.ConsumerGroup == "" {
			return errors.New("KAFKA_CONSUMER_GROUP is required")
		}
		if cfg.Push.Kafka.Sarama.Version == "" {
			return errors.New("KAFKA_SARAMA_VERSION is required")
		}
	default:
		return fmt.Errorf("PUSH_TRANSPORT must be one of none, websocket, kafka, got %q", cfg.Push.Transport)
	}
	if cfg.Push.Transport != PushNone && cfg.Push.ReconnectDelay <= 0 {
		return errors.New("PUSH_RECONNECT_DELAY must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	if os.Getenv(key) == "" {
		return nil
	}
	v, err := osGetInt(key)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setBool(dst *bool, key string) error {
	if os.Getenv(key) == "" {
		return nil
	}
	v, err := osGetBool(key)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	if os.Getenv(key) == "" {
		return nil
	}
	v, err := osGetEnvDuration(key)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key string) error {
	if os.Getenv(key) == "" {
		return nil
	}
	v, err := osGetFloat(key)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func osGetInt(s string) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetFloat(s string) (float64, error) {
	val := os.Getenv(s)
	if val == "" {
		return 0, nil
	}

	res, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return time.Duration(0), nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return false, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}
