// Package scheduler manages background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/scheduler/base"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus describes one registered job for status reporting.
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	LastRun   time.Time `json:"last_run"`
	Runs      int64     `json:"runs"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler manages background jobs
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	entries []entry
}

type entry struct {
	schedule string
	job      Job
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule. All jobs must be
// registered before Start.
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 0 3 * * *"        - 3 AM daily
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return err
	}

	s.entries = append(s.entries, entry{schedule: schedule, job: job})

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

func (s *Scheduler) runJob(job Job) {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	start := time.Now()
	err := s.safeRun(job)
	if rec, ok := job.(base.RunRecorder); ok {
		rec.RecordRun(start, err)
	}

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		return
	}

	s.log.Debug().
		Str("job", job.Name()).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
}

// safeRun executes a job, converting panics to errors so one bad job
// cannot take down the cron goroutine.
func (s *Scheduler) safeRun(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run()
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")

	start := time.Now()
	err := s.safeRun(job)
	if rec, ok := job.(base.RunRecorder); ok {
		rec.RecordRun(start, err)
	}
	return err
}

// Jobs reports status for every registered job.
func (s *Scheduler) Jobs() []JobStatus {
	out := make([]JobStatus, 0, len(s.entries))
	for _, e := range s.entries {
		status := JobStatus{Name: e.job.Name(), Schedule: e.schedule}
		if rep, ok := e.job.(base.StatsReporter); ok {
			status.LastRun, status.Runs, status.LastError = rep.RunStats()
		}
		out = append(out, status)
	}
	return out
}
