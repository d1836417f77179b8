package tx

import (
	"context"
	"database/sql"

	trmsql "github.com/avito-tech/go-transaction-manager/sql"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
)

// Manager инкапсулирует логику управления транзакциями.
type Manager struct {
	internal *manager.Manager
}

// New создаёт новый менеджер транзакций.
func New(db *sql.DB) *Manager {
	return &Manager{
		internal: manager.Must(trmsql.NewDefaultFactory(db)),
	}
}

// Do выполняет fn в транзакции. Вложенные вызовы переиспользуют внешнюю транзакцию.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.internal.Do(ctx, fn)
}

// Nop выполняет fn без транзакции, для хранилищ без поддержки транзакций.
type Nop struct{}

func (Nop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
