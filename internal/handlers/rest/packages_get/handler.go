package packages_get

import (
	"encoding/json"
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
	handlerLog := log.With(logger.NewField("handler", "packages_get"))

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP параметры запроса передаются как фильтры: ?status=PENDING,IN_TRANSIT&carrier=cdek.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filters := entities.FiltersFromQuery(r.URL.Query())

	packages, err := h.service.ListPackages(r.Context(), filters)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Warn("list packages")
		httperr.Write(w, h.log, err)
		return
	}

	if packages == nil {
		packages = []entities.Package{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err = json.NewEncoder(w).Encode(dto.PackageList{
		Packages: packages,
		Count:    len(packages),
	})
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
		).Error("encode JSON response")
	}
}
