package status_simulation

import (
	"context"
	"time"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type Service interface {
	// AdvanceRandom продвигает одну случайную нефинальную посылку на одно состояние.
	// nil без ошибки - продвигать нечего.
	AdvanceRandom(ctx context.Context) (*entities.Package, error)
}

type StatusSimulation struct {
	log      logger.Logger
	service  Service
	interval time.Duration
}

func NewStatusSimulation(log logger.Logger, service Service, interval time.Duration) *StatusSimulation {
	return &StatusSimulation{
		log:      log,
		service:  service,
		interval: interval,
	}
}

func (s *StatusSimulation) TTL() time.Duration {
	return s.interval
}

// Do ошибки симуляции только логируются.
func (s *StatusSimulation) Do(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	pkg, err := s.service.AdvanceRandom(ctxWithTimeout)
	if err != nil {
		s.log.With(
			logger.NewField("error", err),
		).Warn("status simulation tick failed")
		return nil
	}

	if pkg != nil {
		s.log.With(
			logger.NewField("package_id", pkg.ID),
			logger.NewField("status", pkg.Status.String()),
		).Debug("status simulation")
	}

	return nil
}

func (s *StatusSimulation) Info() string {
	return "status simulation"
}
