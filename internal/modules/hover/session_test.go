package hover

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismdash/prism/internal/domain"
)

type sessionCapture struct {
	hovers []domain.HoverState
	clears int
}

func newTestSession(values []float64) (*Session, *ManualScheduler, *sessionCapture) {
	scheduler := NewManualScheduler()
	cap := &sessionCapture{}

	session := NewSession(SessionConfig{
		Values:    values,
		Width:     300,
		Height:    100,
		Padding:   10,
		Scheduler: scheduler,
		Payload: func(i int) map[string]interface{} {
			return map[string]interface{}{"index": i}
		},
		OnHover: func(s domain.HoverState) { cap.hovers = append(cap.hovers, s) },
		OnClear: func() { cap.clears++ },
		Log:     zerolog.New(nil).Level(zerolog.Disabled),
	})

	return session, scheduler, cap
}

func TestSessionPublishesOnFrame(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(300)

	assert.Equal(t, 1, scheduler.Pending(), "Move should queue exactly one frame task")
	assert.Empty(t, cap.hovers, "Payload construction is deferred to the frame boundary")

	scheduler.Fire()

	require.Len(t, cap.hovers, 1)
	state := cap.hovers[0]
	assert.Equal(t, 2, state.Index)
	assert.Equal(t, 300.0, state.X)
	assert.Equal(t, 10.0, state.Y, "Max value maps to the top padding line")
	assert.Equal(t, map[string]interface{}{"index": 2}, state.Payload)
}

func TestSessionSameIndexShortCircuits(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(300)
	scheduler.Fire()
	require.Len(t, cap.hovers, 1)

	// 299 still resolves to index 2: no new task, no new publish
	session.PointerMove(299)

	assert.Equal(t, 0, scheduler.Pending(), "Same-index move must not schedule")
	scheduler.Fire()
	assert.Len(t, cap.hovers, 1, "Same-index move must not publish")
}

func TestSessionSameIndexKeepsPendingTask(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(300)
	session.PointerMove(299)

	assert.Equal(t, 1, scheduler.Pending(), "Same-index move leaves the queued task alone")

	scheduler.Fire()
	assert.Len(t, cap.hovers, 1)
}

func TestSessionNewMoveReplacesPending(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(150)
	session.PointerMove(300)

	assert.Equal(t, 1, scheduler.Pending(), "A newer move replaces the pending task")

	scheduler.Fire()

	require.Len(t, cap.hovers, 1, "Only the newest index may publish")
	assert.Equal(t, 2, cap.hovers[0].Index)
}

func TestSessionLeaveCancelsAndClearsSynchronously(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(300)
	session.PointerLeave()

	assert.Equal(t, 1, cap.clears, "Clear must be emitted before PointerLeave returns")
	assert.Equal(t, 0, scheduler.Pending(), "Leave cancels the pending task")
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, -1, session.LastResolvedIndex())

	scheduler.Fire()
	assert.Empty(t, cap.hovers, "A cancelled task must never publish")
}

func TestSessionHoverAgainAfterLeave(t *testing.T) {
	session, scheduler, cap := newTestSession([]float64{10, 20, 30})

	session.PointerMove(300)
	scheduler.Fire()
	session.PointerLeave()

	// Same index as before the leave, but the reset makes it fresh
	session.PointerMove(300)
	assert.Equal(t, 1, scheduler.Pending())

	scheduler.Fire()
	assert.Len(t, cap.hovers, 2)
}

func TestSessionStateTransitions(t *testing.T) {
	session, scheduler, _ := newTestSession([]float64{10, 20, 30})

	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, -1, session.LastResolvedIndex())

	session.PointerMove(0)
	assert.Equal(t, StateHovering, session.State())
	assert.Equal(t, 0, session.LastResolvedIndex())

	scheduler.Fire()
	assert.Equal(t, StateHovering, session.State(), "Firing keeps the session hovering")

	session.PointerLeave()
	assert.Equal(t, StateIdle, session.State())
}

func TestSessionEmptySeries(t *testing.T) {
	session, scheduler, cap := newTestSession(nil)

	session.PointerMove(100)

	assert.Equal(t, StateIdle, session.State(), "Nothing to hover over")
	assert.Equal(t, 0, scheduler.Pending())
	scheduler.Fire()
	assert.Empty(t, cap.hovers)
}

func TestManualSchedulerCancel(t *testing.T) {
	scheduler := NewManualScheduler()

	ran := false
	cancel := scheduler.Schedule(func() { ran = true })
	cancel()

	scheduler.Fire()
	assert.False(t, ran, "Cancelled task must not run")
	assert.Equal(t, 0, scheduler.Pending())
}
