// Package engine runs the render loop: each tick pulls one spectrum snapshot
// from the bound session, eases the bar heights towards it, paints the bars
// and pulses the background shapes.
package engine

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/linuxmatters/pulsebar/internal/renderer"
)

// Sampler fills a spectrum snapshot of BinCount magnitudes. The returned
// slice may be overwritten by the next call.
type Sampler interface {
	Refresh() []uint8
	BinCount() int
}

// Session is the state bound to one loaded source. A new load builds a new
// Session; an existing one is never rebound.
type Session struct {
	Name     string
	Sampler  Sampler
	Smoothed []float64
	Shapes   []renderer.Shape
}

// NewSession zeroes the smoothed heights and places a fresh set of
// background shapes.
func NewSession(name string, sampler Sampler, rng *rand.Rand) *Session {
	return &Session{
		Name:     name,
		Sampler:  sampler,
		Smoothed: make([]float64, sampler.BinCount()),
		Shapes:   renderer.GenerateShapes(rng, config.ShapeCount),
	}
}

// Handle identifies one started session. Once stopped or superseded it never
// becomes active again.
type Handle struct {
	id      uint64
	session *Session
	active  atomic.Bool
}

// ID is unique per loop.
func (h *Handle) ID() uint64 {
	return h.id
}

// Session returns the session this handle was started with.
func (h *Handle) Session() *Session {
	return h.session
}

// Active reports whether ticks for this handle may still draw.
func (h *Handle) Active() bool {
	return h != nil && h.active.Load()
}
