// Package hover resolves pointer positions into chart indexes and drives
// the tooltip lifecycle for one chart instance at a time.
//
// Each Session is a small state machine (idle -> hovering -> idle) that
// owns all of its own state: the last resolved index and the single
// pending frame task live on the session, never in package globals, so
// two charts can never bleed hover state into each other. Index
// resolution happens immediately on pointer move; the expensive payload
// construction is deferred to the next frame boundary, and a newer move
// replaces the queued task instead of piling up behind it.
package hover

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/geometry"
)

// Session states.
const (
	StateIdle     = "idle"
	StateHovering = "hovering"
)

// PayloadFunc builds the tooltip payload for a resolved index. Builders
// must be pure reads over the chart's series data.
type PayloadFunc func(index int) map[string]interface{}

// SessionConfig carries everything a hover session needs up front: the
// chart's plotted values and viewport, the frame scheduler, the payload
// builder and the two output callbacks.
//
// OnHover and OnClear run with the session lock held and must not call
// back into the session.
type SessionConfig struct {
	Values    []float64
	Width     float64
	Height    float64
	Padding   float64
	Scheduler FrameScheduler
	Payload   PayloadFunc
	OnHover   func(domain.HoverState)
	OnClear   func()
	Log       zerolog.Logger
}

// Session tracks hover state for a single chart instance.
type Session struct {
	mu      sync.Mutex
	values  []float64
	width   float64
	height  float64
	padding float64

	scheduler FrameScheduler
	payload   PayloadFunc
	onHover   func(domain.HoverState)
	onClear   func()
	log       zerolog.Logger

	state             string
	lastResolvedIndex int
	cancelPending     func()
	pendingSeq        uint64
}

// NewSession builds an idle session. The scheduler defaults to a
// production timer scheduler when nil.
func NewSession(cfg SessionConfig) *Session {
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = NewTimerScheduler(DefaultFrameInterval)
	}

	return &Session{
		values:            cfg.Values,
		width:             cfg.Width,
		height:            cfg.Height,
		padding:           cfg.Padding,
		scheduler:         scheduler,
		payload:           cfg.Payload,
		onHover:           cfg.OnHover,
		onClear:           cfg.OnClear,
		log:               cfg.Log.With().Str("component", "hover_session").Logger(),
		state:             StateIdle,
		lastResolvedIndex: -1,
	}
}

// PointerMove resolves the pointer to an index and, if it changed,
// replaces the pending frame task with one for the new index. A move that
// resolves to the current index returns before building or scheduling
// anything.
func (s *Session) PointerMove(pointerX float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := ResolveIndex(pointerX, s.width, len(s.values))
	if index < 0 {
		return
	}
	if index == s.lastResolvedIndex {
		return
	}

	s.lastResolvedIndex = index
	s.state = StateHovering

	// At most one task may wait per session, so the old one goes first
	if s.cancelPending != nil {
		s.cancelPending()
	}
	s.pendingSeq++
	seq := s.pendingSeq
	s.cancelPending = s.scheduler.Schedule(func() {
		s.fireFrame(seq, index)
	})
}

// PointerLeave cancels any pending frame task, resets the session to idle
// and emits the clear synchronously, before returning to the caller.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelPending != nil {
		s.cancelPending()
		s.cancelPending = nil
	}
	// Invalidate a task that already fired and is waiting on the lock
	s.pendingSeq++
	s.lastResolvedIndex = -1
	s.state = StateIdle

	if s.onClear != nil {
		s.onClear()
	}
}

// fireFrame is the deferred half of PointerMove: it builds the payload
// and publishes the hover state, unless a newer move or a leave
// superseded this task while it waited for its frame.
func (s *Session) fireFrame(seq uint64, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.pendingSeq || s.state != StateHovering {
		return
	}
	s.cancelPending = nil

	x, y := geometry.PointAt(s.values, index, s.width, s.height, s.padding)
	var payload map[string]interface{}
	if s.payload != nil {
		payload = s.payload(index)
	}

	if s.onHover != nil {
		s.onHover(domain.HoverState{Index: index, X: x, Y: y, Payload: payload})
	}
}

// State reports the current lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResolvedIndex reports the most recently resolved index, -1 when
// idle.
func (s *Session) LastResolvedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResolvedIndex
}
