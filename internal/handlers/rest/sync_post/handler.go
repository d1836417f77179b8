package sync_post

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"packagesync/internal/entities"
	"packagesync/internal/handlers/rest/dto"
	"packagesync/internal/handlers/rest/httperr"
	"packagesync/pkg/logger"
)

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With(logger.NewField("handler", "sync_post"))

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP пустое тело - параметры по умолчанию. Заданные поля тела
// перекрывают соответствующие значения по умолчанию.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body dto.SyncRequest
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		httperr.Write(w, h.log, entities.NewError(entities.KindInvalidInput, "malformed JSON body", err))
		return
	}

	if body.Limit != nil && *body.Limit <= 0 {
		httperr.Write(w, h.log, entities.NewError(entities.KindInvalidInput, "limit must be positive", nil))
		return
	}

	var opts *entities.SyncOptions
	if err == nil {
		merged := merge(h.service.SyncDefaults(), body)
		opts = &merged
	}

	result, err := h.service.SyncPackages(r.Context(), opts)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Warn("bulk sync")
		httperr.Write(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(result)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}

func merge(defaults entities.SyncOptions, body dto.SyncRequest) entities.SyncOptions {
	opts := defaults
	if body.GeocodingReadyOnly != nil {
		opts.GeocodingReadyOnly = *body.GeocodingReadyOnly
	}
	if body.MinRecordAgeHours != nil {
		opts.MinRecordAgeHours = *body.MinRecordAgeHours
	}
	if body.Limit != nil {
		opts.Limit = *body.Limit
	}
	if body.IncludeMetadata != nil {
		opts.IncludeMetadata = *body.IncludeMetadata
	}
	if body.Location != nil {
		opts.Location = body.Location.ToEntity()
	}
	return opts
}
