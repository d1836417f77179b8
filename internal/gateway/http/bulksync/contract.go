//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=bulksync_test
package bulksync

import (
	"net/http"
	"time"
)

type client interface {
	Do(req *http.Request) (*http.Response, error)
}

type limiter interface {
	Reserve() (bool, time.Duration)
}
