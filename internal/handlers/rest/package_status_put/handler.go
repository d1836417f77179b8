package package_status_put

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
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
	handlerLog := log.With(logger.NewField("handler", "package_status_put"))

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body dto.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.Write(w, h.log, entities.NewError(entities.KindInvalidInput, "malformed JSON body", err))
		return
	}

	status, ok := entities.ParseStatus(body.Status)
	if !ok {
		httperr.Write(w, h.log, entities.NewError(entities.KindInvalidInput, "unknown status "+body.Status, nil))
		return
	}

	sc := entities.StatusContext{
		Location: body.Location.ToEntity(),
		Notes:    body.Notes,
	}

	p, err := h.service.UpdateStatus(r.Context(), id, status, sc)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
			logger.NewField("package_id", id),
			logger.NewField("status", status.String()),
		).Warn("update status")
		httperr.Write(w, h.log, err)
		return
	}

	h.log.With(
		logger.NewField("package_id", id),
		logger.NewField("status", p.Status.String()),
	).Info("status updated")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(p)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
