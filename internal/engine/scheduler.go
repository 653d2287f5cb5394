package engine

import "time"

// Scheduler delivers display refresh beats.
type Scheduler interface {
	C() <-chan time.Time
	Stop()
}

// Ticker beats at a fixed frame rate.
type Ticker struct {
	t *time.Ticker
}

// NewTicker creates a scheduler for fps beats per second.
func NewTicker(fps int) *Ticker {
	return &Ticker{t: time.NewTicker(FrameInterval(fps))}
}

// C returns the beat channel.
func (t *Ticker) C() <-chan time.Time {
	return t.t.C
}

// Stop releases the underlying ticker.
func (t *Ticker) Stop() {
	t.t.Stop()
}

// FrameInterval is the time between beats at fps. Non-positive rates fall
// back to one beat per second.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(fps)
}
