package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sync"
	"time"
)

// ErrTrackClosed is returned when writing to or reading from a released track.
var ErrTrackClosed = errors.New("track is closed")

// decodeChunk is the number of mono samples pulled from a decoder per write.
const decodeChunk = 4096

// Track holds the decoded mono samples of one audio source and shares them
// between the analyser and the playback reader.
//
// Design:
//   - Single producer (the decode goroutine) appends samples via Write()
//   - The analyser reads arbitrary windows via Window(), never blocking
//   - Playback consumes sequentially via ReadPlayback(), blocking for data
//   - Finish() marks the end of decoding; Release() discards the track and
//     unblocks every reader
type Track struct {
	mu   sync.Mutex
	cond *sync.Cond

	name       string
	sampleRate int
	channels   int

	samples []float64
	playPos int

	finished bool
	released bool
	err      error

	// Running statistics over everything written so far
	peak       float64
	sumSquares float64

	done chan struct{}
}

// Stats summarises the decoded part of a track.
type Stats struct {
	Decoded  time.Duration // Audio decoded so far
	Complete bool          // Decoding reached the end of the file
	Peak     float64       // Highest absolute sample
	RMS      float64       // Root mean square over decoded samples
}

// NewTrack creates an empty track.
// capacityHint is the expected number of samples (it can grow as needed).
func NewTrack(name string, sampleRate, channels, capacityHint int) *Track {
	if capacityHint <= 0 {
		capacityHint = sampleRate * 60
	}

	t := &Track{
		name:       name,
		sampleRate: sampleRate,
		channels:   channels,
		samples:    make([]float64, 0, capacityHint),
		done:       make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Load opens filename and decodes it into a new track in the background.
// Format errors are returned immediately; decode errors after the first
// sample are recorded on the track and reported by Err().
func Load(ctx context.Context, filename string) (*Track, error) {
	dec, err := Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio: %w", err)
	}

	if dec.SampleRate() <= 0 {
		dec.Close()
		return nil, fmt.Errorf("invalid sample rate %d in %s", dec.SampleRate(), filename)
	}

	t := NewTrack(filepath.Base(filename), dec.SampleRate(), dec.NumChannels(), 0)
	go t.decode(ctx, dec)
	return t, nil
}

// decode pumps dec into the track until EOF, an error, cancellation, or release.
func (t *Track) decode(ctx context.Context, dec AudioDecoder) {
	defer close(t.done)
	defer dec.Close()

	for {
		if ctx.Err() != nil {
			t.Finish(ctx.Err())
			return
		}

		chunk, err := dec.ReadChunk(decodeChunk)
		if err != nil {
			if err == io.EOF {
				t.Finish(nil)
			} else {
				t.Finish(fmt.Errorf("decoding %s: %w", t.name, err))
			}
			return
		}

		if err := t.Write(chunk); err != nil {
			return
		}
	}
}

// Write appends samples to the track and wakes the playback reader.
func (t *Track) Write(samples []float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released || t.finished {
		return ErrTrackClosed
	}

	for _, s := range samples {
		if a := math.Abs(s); a > t.peak {
			t.peak = a
		}
		t.sumSquares += s * s
	}

	t.samples = append(t.samples, samples...)
	t.cond.Broadcast()
	return nil
}

// Finish signals that no more samples will be written.
// err records why decoding stopped early; nil means end of file.
func (t *Track) Finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}
	t.finished = true
	t.err = err
	t.cond.Broadcast()
}

// Release discards the track. Blocked readers return ErrTrackClosed and the
// decode goroutine, if any, stops at its next write.
func (t *Track) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.released = true
	t.cond.Broadcast()
}

// Done is closed when the decode goroutine started by Load has exited.
func (t *Track) Done() <-chan struct{} {
	return t.done
}

// Window copies the len(dst) samples that end just before sample index end.
// Positions outside the decoded range read as silence. Never blocks.
func (t *Track) Window(end int, dst []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := end - len(dst)
	for i := range dst {
		idx := start + i
		if t.released || idx < 0 || idx >= len(t.samples) {
			dst[i] = 0
			continue
		}
		dst[i] = t.samples[idx]
	}
}

// ReadPlayback fills dst with the next samples for playback.
// Blocks until at least one sample is available. Returns io.EOF once
// decoding has finished and everything has been read.
func (t *Track) ReadPlayback(dst []float64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		if t.released {
			return 0, ErrTrackClosed
		}

		available := len(t.samples) - t.playPos
		if available > 0 {
			n := copy(dst, t.samples[t.playPos:])
			t.playPos += n
			return n, nil
		}

		if t.finished {
			return 0, io.EOF
		}

		t.cond.Wait()
	}
}

// RewindPlayback moves the playback reader back to the first sample.
func (t *Track) RewindPlayback() {
	t.mu.Lock()
	t.playPos = 0
	t.mu.Unlock()
}

// Name returns the base file name of the source.
func (t *Track) Name() string {
	return t.name
}

// SampleRate returns the sample rate in Hz.
func (t *Track) SampleRate() int {
	return t.sampleRate
}

// NumChannels returns the channel count of the source before downmixing.
func (t *Track) NumChannels() int {
	return t.channels
}

// TotalSamples returns the number of samples decoded so far.
func (t *Track) TotalSamples() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.samples)
}

// Duration returns the decoded length, and whether decoding is complete.
func (t *Track) Duration() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.durationLocked(), t.finished
}

// Err returns the error that stopped decoding, if any.
func (t *Track) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Stats returns the running statistics.
func (t *Track) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Decoded:  t.durationLocked(),
		Complete: t.finished && t.err == nil,
		Peak:     t.peak,
	}
	if n := len(t.samples); n > 0 {
		s.RMS = math.Sqrt(t.sumSquares / float64(n))
	}
	return s
}

// SampleAt converts a playback position to a sample index.
func (t *Track) SampleAt(pos time.Duration) int {
	return int(pos.Seconds() * float64(t.sampleRate))
}

func (t *Track) durationLocked() time.Duration {
	return time.Duration(float64(len(t.samples)) / float64(t.sampleRate) * float64(time.Second))
}
