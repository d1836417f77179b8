package tracking

import (
	"context"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

// Notice пользовательское уведомление.
type Notice struct {
	PackageID string
	Title     string
	Body      string
}

// NoLocation положение всегда неизвестно.
type NoLocation struct{}

func (NoLocation) CurrentLocation(context.Context) (*entities.Location, error) {
	return nil, nil
}

// StaticLocation фиксированное положение, например из конфигурации.
type StaticLocation struct {
	Location entities.Location
}

func (s StaticLocation) CurrentLocation(context.Context) (*entities.Location, error) {
	loc := s.Location
	return &loc, nil
}

// NopNotifier молча отбрасывает уведомления.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notice) error {
	return nil
}

// LogNotifier пишет уведомления в лог, для демона без UI.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, notice Notice) error {
	n.Log.With(
		logger.NewField("package_id", notice.PackageID),
		logger.NewField("body", notice.Body),
	).Info(notice.Title)
	return nil
}
