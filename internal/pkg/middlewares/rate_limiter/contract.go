//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=rate_limiter_test
package rate_limiter

import (
	"time"

	"packagesync/pkg/logger"
)

// Limiter Reserve при отказе возвращает, через сколько появится токен.
type Limiter interface {
	Reserve() (bool, time.Duration)
}

type handlerLogger interface {
	Debug(msg string, fields ...logger.Field)
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}
