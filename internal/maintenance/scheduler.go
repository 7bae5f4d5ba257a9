// Package maintenance runs periodic housekeeping on the durable store.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"qrd/internal/providers"
	"qrd/internal/store"
	"qrd/internal/structures"
)

const defaultInterval = time.Hour

type SchedulerInterface interface {
	Init()
	Stop()
}

type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	store  store.Store
	cron   *gron.Cron
	opsMu  sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Storage.MaintenanceInterval
	if interval <= 0 {
		interval = defaultInterval
	}

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.store.Maintain(ctx); err != nil {
			s.logger.Errorf(providers.TypeApp, "Database maintenance failed: %s", err)
			return
		}
		s.logger.Infof(providers.TypeApp, "Database maintenance completed")
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, st store.Store) SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		store:  st,
	}
}
