//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=tracking_test
package tracking

import (
	"context"

	"packagesync/internal/entities"
)

type Repository interface {
	ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error)
	GetPackageDetail(ctx context.Context, id string) (*entities.Package, error)
	UpdateStatus(ctx context.Context, id string, status entities.PackageStatusType, sc entities.StatusContext) (*entities.Package, error)
	UpsertPackages(ctx context.Context, packages []entities.Package) ([]entities.Package, error)
	Subscribe(fn func(entities.Event)) func()
}

type Syncer interface {
	Sync(ctx context.Context, opts entities.SyncOptions) (*entities.SyncResult, error)
}

// LocationProvider источник текущего положения устройства. nil без ошибки - положение неизвестно.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (*entities.Location, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}
