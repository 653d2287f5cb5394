// Package playback provides the clocks that drive the spectrum sampler: a
// silent wall clock, a manually stepped clock for offline rendering, and an
// audible player.
package playback

import (
	"sync"
	"time"

	"github.com/linuxmatters/pulsebar/internal/audio"
)

// Transport is a playback clock that can be started and stopped.
type Transport interface {
	audio.Clock

	Play()
	Pause()
	Rewind()
	SetVolume(v float64)
	Close() error
}

// WallClock advances with real time while playing. It produces no sound.
type WallClock struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time     // Wall time of the last Play
	offset  time.Duration // Position accumulated before the last Play
	playing bool
	length  func() (time.Duration, bool)
}

// NewWallClock creates a paused clock at position zero. length reports the
// track duration and whether it is final; once a final length is reached the
// clock stops itself, like a media element firing "ended".
func NewWallClock(length func() (time.Duration, bool)) *WallClock {
	return &WallClock{now: time.Now, length: length}
}

// Play starts or resumes the clock. Playing from the end restarts at zero.
func (c *WallClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		return
	}
	if c.endedLocked(c.offset) {
		c.offset = 0
	}
	c.started = c.now()
	c.playing = true
}

// Pause freezes the position.
func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return
	}
	c.offset = c.positionLocked()
	c.playing = false
}

// Rewind moves the position back to zero without changing play state.
func (c *WallClock) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.offset = 0
	if c.playing {
		c.started = c.now()
	}
}

// Position returns the elapsed play time, capped at a known track length.
func (c *WallClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.positionLocked()
	if c.endedLocked(pos) {
		d, _ := c.length()
		c.offset = d
		c.playing = false
		return d
	}
	return pos
}

// Playing reports whether the clock is running.
func (c *WallClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing && c.endedLocked(c.positionLocked()) {
		d, _ := c.length()
		c.offset = d
		c.playing = false
	}
	return c.playing
}

// SetVolume is a no-op; the wall clock is silent.
func (c *WallClock) SetVolume(float64) {}

// Close stops the clock.
func (c *WallClock) Close() error {
	c.Pause()
	return nil
}

func (c *WallClock) positionLocked() time.Duration {
	if !c.playing {
		return c.offset
	}
	return c.offset + c.now().Sub(c.started)
}

func (c *WallClock) endedLocked(pos time.Duration) bool {
	if c.length == nil {
		return false
	}
	d, final := c.length()
	return final && pos >= d
}

// ManualClock is stepped explicitly; used to render frames faster than real time.
type ManualClock struct {
	mu  sync.Mutex
	pos time.Duration
}

// Set moves the clock.
func (c *ManualClock) Set(pos time.Duration) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

// Position returns the last Set position.
func (c *ManualClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

// Playing is always true.
func (c *ManualClock) Playing() bool { return true }
