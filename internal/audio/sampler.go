package audio

import (
	"time"
)

// Clock reports the playback position of a track.
type Clock interface {
	// Position is the offset of the sample currently being heard.
	Position() time.Duration

	// Playing is false while paused or after the end of the track.
	Playing() bool
}

// Sampler binds a track, its playback clock and an analyser, and exposes
// the track's spectrum one snapshot at a time.
type Sampler struct {
	track    *Track
	clock    Clock
	analyser *Analyser

	window   []float64
	snapshot []uint8
	err      error // Last analysis failure, nil once a refresh succeeds
}

// NewSampler creates a sampler whose snapshot has analyser.BinCount() bins.
func NewSampler(track *Track, clock Clock, analyser *Analyser) *Sampler {
	return &Sampler{
		track:    track,
		clock:    clock,
		analyser: analyser,
		window:   make([]float64, analyser.FFTSize()),
		snapshot: make([]uint8, analyser.BinCount()),
	}
}

// Refresh overwrites the snapshot with the spectrum at the current playback
// position and returns it. The returned slice is reused by the next call.
// While the clock is not playing the analyser is fed silence, so bars decay
// to zero the way a paused media element does. A failed analysis yields an
// all-zero snapshot and is reported by Err.
func (s *Sampler) Refresh() []uint8 {
	if s.clock.Playing() {
		end := s.track.SampleAt(s.clock.Position())
		s.track.Window(end, s.window)
	} else {
		clear(s.window)
	}

	s.err = s.analyser.ByteFrequencyData(s.window, s.snapshot)
	return s.snapshot
}

// Err returns the error of the last Refresh.
func (s *Sampler) Err() error {
	return s.err
}

// Snapshot returns the last refreshed spectrum without analysing.
func (s *Sampler) Snapshot() []uint8 {
	return s.snapshot
}

// BinCount returns the snapshot length.
func (s *Sampler) BinCount() int {
	return len(s.snapshot)
}

// Track returns the bound track.
func (s *Sampler) Track() *Track {
	return s.track
}
