package scheduler

import (
	"context"
	"errors"
	"time"

	"boxarr/internal/config"
	"boxarr/internal/journal"
	"boxarr/internal/logging"
)

// Start launches the recurring timer loop. The loop checks the schedule
// every check interval and fires at most one run per scheduled slot.
func (s *Scheduler) Start(ctx context.Context) error {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.loopStop != nil {
		return errors.New("scheduler loop already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.loopStop = cancel

	s.wg.Add(1)
	go s.loop(loopCtx)
	s.logger.Info("scheduler loop started")
	return nil
}

// Stop terminates the loop and waits for it to exit. A run already in
// progress is not preempted mid-step; its context controls cancellation.
func (s *Scheduler) Stop() {
	s.loopMu.Lock()
	cancel := s.loopStop
	s.loopStop = nil
	s.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler loop stopped")
}

// UpdateSchedule swaps in new scheduler settings at runtime. The caller
// is responsible for validating them first.
func (s *Scheduler) UpdateSchedule(sched config.Scheduler) {
	s.schedMu.Lock()
	s.schedule = sched
	s.schedMu.Unlock()
	s.logger.Info("schedule updated",
		logging.Bool("enabled", sched.Enabled),
		logging.Int("weekday", sched.Weekday),
		logging.Int("hour", sched.Hour),
	)
}

// Schedule returns the active scheduler settings.
func (s *Scheduler) Schedule() config.Scheduler {
	s.schedMu.RLock()
	defer s.schedMu.RUnlock()
	return s.schedule
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.checkInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.maybeFire(ctx)
			// Re-read the interval each tick so UpdateSchedule changes
			// take effect without a restart.
			timer.Reset(s.checkInterval())
		}
	}
}

func (s *Scheduler) checkInterval() time.Duration {
	interval := time.Duration(s.Schedule().CheckIntervalSeconds) * time.Second
	if interval <= 0 {
		return time.Minute
	}
	return interval
}

// maybeFire runs the pipeline when the current tick falls inside the
// scheduled slot's misfire grace window and the slot has not fired yet. A
// slot missed by more than the grace window is skipped until next week.
func (s *Scheduler) maybeFire(ctx context.Context) {
	sched := s.Schedule()
	if !sched.Enabled {
		return
	}

	now := s.now()
	if int(now.Weekday()) != sched.Weekday {
		return
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), sched.Hour, 0, 0, 0, now.Location())
	if now.Before(slot) {
		return
	}
	grace := time.Duration(sched.MisfireGraceMinutes) * time.Minute
	if grace <= 0 {
		grace = time.Hour
	}
	if now.Sub(slot) > grace {
		return
	}

	s.mu.Lock()
	fired := !s.lastFire.Before(slot)
	if !fired {
		s.lastFire = slot
	}
	s.mu.Unlock()
	if fired {
		return
	}

	year, week := s.feed.CurrentWeek()
	if _, err := s.run(ctx, year, week, journal.TriggerScheduled); err != nil {
		s.logger.Error("scheduled run failed", logging.Error(err))
	}
}
