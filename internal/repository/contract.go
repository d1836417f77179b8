package repository

import (
	"context"

	"packagesync/internal/entities"
)

// PackageRepository общий контракт локального и удаленного хранилищ посылок.
// Все ошибки, пересекающие контракт, классифицированы через entities.Error.
type PackageRepository interface {
	// ListPackages фильтры, которые реализация не поддерживает, игнорируются.
	ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error)
	GetPackageDetail(ctx context.Context, id string) (*entities.Package, error)
	// UpdateStatus возвращает посылку в сохраненном виде, в offline режиме это оптимистичный результат.
	UpdateStatus(ctx context.Context, id string, status entities.PackageStatusType, sc entities.StatusContext) (*entities.Package, error)
	// UpsertPackages вставляет или целиком заменяет записи.
	UpsertPackages(ctx context.Context, packages []entities.Package) ([]entities.Package, error)
	Subscribe(fn func(entities.Event)) (unsubscribe func())
	Close() error
}
