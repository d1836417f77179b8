package healthcheck_head

import (
	"net/http"
	"strconv"
	"sync/atomic"
)

// ConnectivityHeader online-состояние хранилища, если оно его отслеживает.
const ConnectivityHeader = "X-Store-Online"

// Connectivity хранилище с online/offline состоянием.
type Connectivity interface {
	Online() bool
}

type Handler struct {
	isShuttingDown *atomic.Bool
	store          Connectivity
}

// New store может быть nil, тогда заголовок не выставляется.
func New(isShuttingDown *atomic.Bool, store Connectivity) *Handler {
	return &Handler{
		isShuttingDown: isShuttingDown,
		store:          store,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if h.isShuttingDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if h.store != nil {
		w.Header().Set(ConnectivityHeader, strconv.FormatBool(h.store.Online()))
	}
	w.WriteHeader(http.StatusNoContent)
}
