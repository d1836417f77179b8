package retrier

import (
	"context"
	"time"
)

type Retrier interface {
	ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error
}

type ShouldRetryFunc func(error) bool

// OnRetryFunc вызывается перед очередной паузой: ошибка прошлой попытки и длительность паузы.
type OnRetryFunc func(err error, next time.Duration)

type Policy int

const (
	// Exponential - InitialInterval * Multiplier^n с джиттером Randomization.
	Exponential Policy = iota
	// Linear - BaseDelay * номер попытки, без джиттера.
	Linear
)

type Config struct {
	Policy Policy

	// Exponential
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	Randomization   float64
	Multiplier      float64

	// Linear
	BaseDelay time.Duration

	// MaxAttempts общее число попыток, включая первую. 0 - без ограничения по количеству.
	MaxAttempts uint64

	// Если nil - ретраятся все ошибки, если не nil - только те где функция вернула true
	ShouldRetry ShouldRetryFunc
	OnRetry     OnRetryFunc
}

// LinearConfig политика по умолчанию для сетевых чтений: attempts попыток с паузой base*n.
func LinearConfig(attempts uint64, base time.Duration, shouldRetry ShouldRetryFunc) Config {
	return Config{
		Policy:      Linear,
		BaseDelay:   base,
		MaxAttempts: attempts,
		ShouldRetry: shouldRetry,
	}
}
