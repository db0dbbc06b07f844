package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/aegis-risk/aegis/internal/logger"
)

// Scheduler triggers full pipeline runs on a cron spec. The core assumes
// single-invocation concurrency, so a tick that arrives while a run is still
// active is skipped rather than overlapped.
type Scheduler struct {
	cron    *cron.Cron
	running atomic.Bool
	run     func(context.Context) error
}

// New builds a scheduler for the given cron spec and run function.
func New(spec string, run func(context.Context) error) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		run:  run,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse pipeline cron spec %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if !s.running.CompareAndSwap(false, true) {
		logger.Log().Warn("previous pipeline run still active, skipping tick")
		return
	}
	defer s.running.Store(false)

	if err := s.run(context.Background()); err != nil {
		logger.Log().Errorf("scheduled pipeline run failed: %v", err)
	}
}

// Start begins firing ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
