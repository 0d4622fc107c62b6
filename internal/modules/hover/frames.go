package hover

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60fps frame boundary.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameScheduler defers a task to the next frame boundary. Schedule
// returns a cancel func; cancelling after the task already ran is a
// harmless no-op. Implementations must not run the task synchronously
// inside Schedule.
type FrameScheduler interface {
	Schedule(fn func()) (cancel func())
}

// TimerScheduler is the production scheduler: each task fires once after
// one frame interval on a timer goroutine.
type TimerScheduler struct {
	interval time.Duration
}

// NewTimerScheduler builds a TimerScheduler, falling back to
// DefaultFrameInterval for non-positive intervals.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{interval: interval}
}

// Schedule arms a one-shot timer for the task.
func (s *TimerScheduler) Schedule(fn func()) func() {
	timer := time.AfterFunc(s.interval, fn)
	return func() { timer.Stop() }
}

// ManualScheduler is a deterministic scheduler for tests: tasks queue up
// until Fire runs them.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn        func()
	cancelled bool
}

// NewManualScheduler builds an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues the task until the next Fire.
func (s *ManualScheduler) Schedule(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &manualTask{fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Fire runs every queued task that was not cancelled and empties the
// queue. Tasks run without the scheduler lock held, so they may schedule
// or cancel freely.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, task := range tasks {
		s.mu.Lock()
		skip := task.cancelled
		s.mu.Unlock()
		if !skip {
			task.fn()
		}
	}
}

// Pending reports how many uncancelled tasks are waiting.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, task := range s.tasks {
		if !task.cancelled {
			n++
		}
	}
	return n
}
