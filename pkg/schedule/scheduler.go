// Package schedule triggers refinement sessions on a cron cadence,
// for domains whose source documents change over time.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ontoforge/ontoforge-go/utils"
)

// RefineFunc runs one scheduled refinement pass
type RefineFunc func(ctx context.Context) error

// Scheduler runs registered refinement jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *utils.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates an idle scheduler
func NewScheduler(logger *utils.Logger) *Scheduler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		jobs:   map[string]cron.EntryID{},
	}
}

// AddJob registers a named refinement job with a cron spec. Adding a
// name twice replaces the previous schedule.
func (s *Scheduler) AddJob(name, spec string, fn RefineFunc) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if fn == nil {
		return fmt.Errorf("refine function is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(spec, func() {
		if err := fn(context.Background()); err != nil {
			s.logger.Error("scheduled refinement failed", err,
				utils.Component("schedule"), utils.String("job", name))
			return
		}
		s.logger.Debug("scheduled refinement finished",
			utils.Component("schedule"), utils.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	if previous, ok := s.jobs[name]; ok {
		s.cron.Remove(previous)
	}
	s.jobs[name] = entryID
	return nil
}

// RemoveJob unregisters a job by name
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(entryID)
	delete(s.jobs, name)
	return nil
}

// JobCount returns the number of registered jobs
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
