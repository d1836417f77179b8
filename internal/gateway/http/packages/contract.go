//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=packages_test
package packages

import "net/http"

type client interface {
	Do(req *http.Request) (*http.Response, error)
}
