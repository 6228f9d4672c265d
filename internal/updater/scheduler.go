package updater

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs silent update checks on a cron schedule and reports each
// newly seen version once.
type Scheduler struct {
	manager *Manager
	spec    string
	notify  func(State)

	mu           sync.Mutex
	cron         *cron.Cron
	lastNotified string
}

func NewScheduler(manager *Manager, spec string, notify func(State)) *Scheduler {
	return &Scheduler{
		manager: manager,
		spec:    spec,
		notify:  notify,
	}
}

// Start registers the job; an empty spec disables the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.check(ctx) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Info().Str("spec", s.spec).Msg("update scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *Scheduler) check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	st := s.manager.Status()
	if st.Active() || st == StatusChecking {
		return
	}
	if err := s.manager.CheckForUpdates(ctx, true); err != nil {
		return
	}
	state := s.manager.Snapshot()
	if state.Status != StatusAvailable || state.Info == nil {
		return
	}

	s.mu.Lock()
	already := s.lastNotified == state.Info.Version
	s.lastNotified = state.Info.Version
	s.mu.Unlock()

	if !already && s.notify != nil {
		s.notify(state)
	}
}
