// Package base provides shared run-state tracking for scheduler jobs.
package base

import (
	"sync"
	"time"
)

// RunRecorder is implemented by jobs that track their own run outcomes.
type RunRecorder interface {
	RecordRun(start time.Time, err error)
}

// StatsReporter exposes recorded run state for status endpoints.
type StatsReporter interface {
	RunStats() (lastRun time.Time, runs int64, lastError string)
}

// JobBase tracks execution state common to all scheduled jobs.
// Jobs embed it to get run bookkeeping for the system status endpoint.
type JobBase struct {
	mu        sync.Mutex
	lastRun   time.Time
	runs      int64
	lastError string
}

// RecordRun stores the outcome of a run.
func (j *JobBase) RecordRun(start time.Time, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.lastRun = start
	j.runs++
	if err != nil {
		j.lastError = err.Error()
	} else {
		j.lastError = ""
	}
}

// RunStats reports the last run time, total runs and last error message.
func (j *JobBase) RunStats() (time.Time, int64, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun, j.runs, j.lastError
}
