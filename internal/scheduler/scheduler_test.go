package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismdash/prism/internal/scheduler/base"
)

type countingJob struct {
	base.JobBase
	name  string
	runs  atomic.Int64
	err   error
	panic bool
}

func (j *countingJob) Name() string {
	return j.name
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	if j.panic {
		panic("job blew up")
	}
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("@hourly", &countingJob{name: "hourly_job"})
	require.NoError(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "hourly_job", jobs[0].Name)
	assert.Equal(t, "@hourly", jobs[0].Schedule)
	assert.Equal(t, int64(0), jobs[0].Runs)
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &countingJob{name: "broken"})
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual"}
	require.NoError(t, s.AddJob("@daily", job))

	require.NoError(t, s.RunNow(job))
	require.NoError(t, s.RunNow(job))

	assert.Equal(t, int64(2), job.runs.Load())

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(2), jobs[0].Runs)
	assert.False(t, jobs[0].LastRun.IsZero())
	assert.Empty(t, jobs[0].LastError)
}

func TestRunNowRecordsError(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.AddJob("@daily", job))

	err := s.RunNow(job)
	assert.Error(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "boom", jobs[0].LastError)
}

func TestRunNowRecoversPanic(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "panicking", panic: true}
	require.NoError(t, s.AddJob("@daily", job))

	err := s.RunNow(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job panicked")

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Contains(t, jobs[0].LastError, "job blew up")
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "idle"}))

	s.Start()
	s.Stop()
}
