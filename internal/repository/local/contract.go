//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=local_test
package local

import "context"

type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
