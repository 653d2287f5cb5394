package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/linuxmatters/pulsebar/internal/renderer"
)

// State of the loop.
type State int

const (
	Idle   State = iota // No session bound
	Active              // A session is bound and ticks draw
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Frame is the outcome of one drawing tick.
type Frame struct {
	Handle   *Handle
	Seq      uint64  // Drawing tick count for this loop
	Snapshot []uint8 // Valid until the next tick
	Shapes   []renderer.Shape
}

// Stats counts ticks since the loop was created.
type Stats struct {
	Drawn   uint64
	Skipped uint64
}

// Loop owns the bound session and the drawing surface. Only one tick runs at
// a time. Start and Stop never wait for a tick in flight, so they may be
// called from inside one; a frame returned by Tick can therefore already be
// stale by the time the caller sees it, and consumers that tear sessions down
// must compare Frame.Handle against their own bound handle.
type Loop struct {
	mu      sync.Mutex // Held for the duration of a tick
	surface renderer.Surface
	log     *slog.Logger

	heights []float64        // Scratch eased heights for the tick in flight
	shapes  []renderer.Shape // Scratch shapes for the tick in flight

	current atomic.Pointer[Handle]
	nextID  atomic.Uint64
	drawn   atomic.Uint64
	skipped atomic.Uint64
}

// NewLoop creates an idle loop drawing onto surface.
func NewLoop(surface renderer.Surface, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{surface: surface, log: log}
}

// Start binds session and returns its handle. Any previous handle is
// deactivated first, so a tick that captured it draws nothing further.
func (l *Loop) Start(session *Session) *Handle {
	h := &Handle{id: l.nextID.Add(1), session: session}
	h.active.Store(true)

	if prev := l.current.Swap(h); prev != nil {
		prev.active.Store(false)
	}

	l.log.Debug("session started", "handle", h.id, "name", session.Name, "bins", len(session.Smoothed))
	return h
}

// Stop deactivates h. If h is the bound handle the loop becomes idle.
func (l *Loop) Stop(h *Handle) {
	if h == nil {
		return
	}
	h.active.Store(false)
	if l.current.CompareAndSwap(h, nil) {
		l.log.Debug("session stopped", "handle", h.id)
	}
}

// Current returns the bound handle, or nil when idle.
func (l *Loop) Current() *Handle {
	return l.current.Load()
}

// State reports whether a session is bound.
func (l *Loop) State() State {
	if l.current.Load().Active() {
		return Active
	}
	return Idle
}

// Stats returns the tick counters.
func (l *Loop) Stats() Stats {
	return Stats{Drawn: l.drawn.Load(), Skipped: l.skipped.Load()}
}

// Tick runs one frame. It reports false when no session is bound or the
// captured handle is superseded part way through. The handle is rechecked
// after sampling, clearing and painting; heights and shapes are eased in
// scratch buffers and only copied into the session once the frame completes,
// so a superseded tick leaves its session untouched and the surface cleared.
func (l *Loop) Tick() (Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := l.current.Load()
	if !h.Active() {
		return l.skip()
	}
	s := h.session

	snapshot := s.Sampler.Refresh()
	if !h.Active() {
		return l.skip()
	}
	if len(snapshot) != len(s.Smoothed) {
		l.log.Warn("snapshot size mismatch", "handle", h.id, "bins", len(snapshot), "want", len(s.Smoothed))
		return l.skip()
	}

	l.heights = append(l.heights[:0], s.Smoothed...)
	l.shapes = append(l.shapes[:0], s.Shapes...)

	l.surface.Clear()
	if !h.Active() {
		return l.skip()
	}
	renderer.DrawBars(l.surface, snapshot, l.heights)
	renderer.UpdateShapes(l.shapes, snapshot)
	if !h.Active() {
		l.surface.Clear()
		return l.skip()
	}

	copy(s.Smoothed, l.heights)
	copy(s.Shapes, l.shapes)

	return Frame{
		Handle:   h,
		Seq:      l.drawn.Add(1),
		Snapshot: snapshot,
		Shapes:   s.Shapes,
	}, true
}

func (l *Loop) skip() (Frame, bool) {
	l.skipped.Add(1)
	return Frame{}, false
}

// Run ticks on every scheduler beat until ctx is cancelled, passing each
// drawn frame to onFrame. Idle beats are skipped and the loop keeps waiting,
// so a session started later is picked up on the next beat.
func (l *Loop) Run(ctx context.Context, sched Scheduler, onFrame func(Frame)) error {
	defer sched.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sched.C():
			frame, ok := l.Tick()
			if ok && onFrame != nil {
				onFrame(frame)
			}
		}
	}
}
