package remote

import (
	"context"
	"errors"
	"net/http"

	"packagesync/internal/entities"
)

var (
	ErrClosed           = errors.New("remote store is closed")
	ErrRealtimeDisabled = errors.New("realtime push is not configured")
)

// classify приводит любую ошибку к entities.Error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := entities.AsError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return entities.NewError(entities.KindNetworkTimeout, "request timed out", err)
	}
	return entities.NewError(entities.KindNetwork, "request failed", err)
}

// isConnectivity ошибка связи, а не ответ сервера.
func isConnectivity(err error) bool {
	switch entities.KindOf(classify(err)) {
	case entities.KindNetwork, entities.KindNetworkTimeout:
		return true
	default:
		return false
	}
}

// shouldRetryRead клиентские ошибки 4xx не ретраятся, кроме 408 и 429.
func shouldRetryRead(err error) bool {
	e, ok := entities.AsError(err)
	if !ok {
		return true
	}
	if e.Kind.IsHTTP() {
		code := e.StatusCode
		if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
			return true
		}
		return code < 400 || code >= 500
	}
	return e.Retryable()
}

func isHTTPStatus(err error, code int) bool {
	e, ok := entities.AsError(err)
	return ok && e.StatusCode == code
}
