package graceful_shutdown

import (
	"context"
	"net/http"
	"sync/atomic"
)

// Middleware после отмены ongoingCtx при выставленном флаге остановки отвечает 503,
// чтобы новые запросы не запускали обращения к хранилищу и синхронизации.
func Middleware(isShuttingDown *atomic.Bool, ongoingCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-ongoingCtx.Done():
				if isShuttingDown.Load() {
					w.Header().Set("Connection", "close")
					http.Error(w, "packagesync is shutting down", http.StatusServiceUnavailable)
					return
				}
			default:
			}
			next.ServeHTTP(w, r)
		})
	}
}
