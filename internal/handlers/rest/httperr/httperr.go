package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"packagesync/internal/entities"
	"packagesync/internal/handlers/rest/dto"
	"packagesync/internal/service/tracking"
	"packagesync/pkg/logger"
)

type errorLogger interface {
	Error(msg string, fields ...logger.Field)
}

// Status HTTP код ответа для ошибки сервиса.
func Status(err error) int {
	switch {
	case errors.Is(err, tracking.ErrEmptyID),
		errors.Is(err, entities.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrSyncThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, tracking.ErrSyncDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, entities.ErrSyncTimeout),
		errors.Is(err, entities.ErrNetworkTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, entities.ErrStorage),
		errors.Is(err, entities.ErrQueueExpired):
		return http.StatusInternalServerError
	}

	if _, ok := entities.AsError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Write отвечает классифицированной ошибкой в JSON.
func Write(w http.ResponseWriter, log errorLogger, err error) {
	body := dto.Error{
		Error:   "INTERNAL",
		Message: http.StatusText(http.StatusInternalServerError),
	}
	if e, ok := entities.AsError(err); ok {
		body = dto.Error{
			Error:     e.Kind.String(),
			Message:   e.Guidance(),
			Retryable: e.Retryable(),
		}
	} else if errors.Is(err, tracking.ErrEmptyID) || errors.Is(err, tracking.ErrSyncDisabled) {
		body.Error = "INVALID_REQUEST"
		body.Message = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(err))
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("encode JSON response", logger.NewField("error", err))
	}
}
