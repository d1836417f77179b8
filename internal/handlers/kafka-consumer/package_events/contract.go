package package_events

import (
	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Sink получатель разобранных событий, вызывается синхронно.
type Sink func(entities.PushEvent)
