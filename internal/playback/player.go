package playback

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/linuxmatters/pulsebar/internal/audio"
)

const (
	outputRate     = 44100
	outputChannels = 1
	bytesPerSample = 2 // 16-bit mono
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// oto allows one context per process, so every Player shares it.
func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   outputRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Player plays a track through the system audio device and reports the
// position of what is actually audible.
type Player struct {
	mu     sync.Mutex
	ctx    *oto.Context
	track  *audio.Track
	player *oto.Player
	reader *pcmReader
	volume float64
	paused bool
	closed bool
}

// NewPlayer creates a paused player for track.
func NewPlayer(track *audio.Track, volume float64) (*Player, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}

	p := &Player{
		ctx:    ctx,
		track:  track,
		volume: clampVolume(volume),
		paused: true,
	}
	p.openLocked()
	return p, nil
}

// openLocked starts a fresh oto player reading from the track's current
// playback position.
func (p *Player) openLocked() {
	p.reader = newPCMReader(p.track, outputRate)
	p.player = p.ctx.NewPlayer(p.reader)
	p.player.SetVolume(p.volume)
}

// Rewind restarts output from the first sample. It is meant for a track that
// has played to the end; the previous oto player is discarded.
func (p *Player) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.player.Pause()
	_ = p.player.Close()

	p.track.RewindPlayback()
	p.openLocked()
	if !p.paused {
		p.player.Play()
	}
}

// Play starts or resumes output.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.player.Play()
	p.paused = false
}

// Pause stops output, keeping the buffered position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.player.Pause()
	p.paused = true
}

// Playing is false while paused and once the track has drained.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && !p.paused && p.player.IsPlaying()
}

// Position is the audible position: samples handed to oto minus what is
// still sitting in its buffer.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	written := p.reader.written.Load()
	if !p.closed {
		written -= int64(p.player.BufferedSize() / bytesPerSample)
	}
	if written < 0 {
		written = 0
	}
	return time.Duration(float64(written) / outputRate * float64(time.Second))
}

// SetVolume sets output volume in [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = clampVolume(v)
	if !p.closed {
		p.player.SetVolume(p.volume)
	}
}

// Close stops output. The track must be released separately.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.player.Pause()
	return p.player.Close()
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}

// pcmReader adapts a track to the io.Reader oto pulls from, converting to
// 16-bit little-endian PCM and linearly resampling to the output rate.
type pcmReader struct {
	track *audio.Track
	step  float64 // Source samples per output sample

	src  []float64 // Source samples not yet fully consumed
	frac float64   // Read position within src
	read []float64 // Scratch for ReadPlayback
	eof  bool

	written atomic.Int64 // Output samples produced
}

func newPCMReader(track *audio.Track, rate int) *pcmReader {
	return &pcmReader{
		track: track,
		step:  float64(track.SampleRate()) / float64(rate),
		read:  make([]float64, 2048),
	}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	want := len(p) / bytesPerSample
	out := 0

	for out < want {
		i := int(r.frac)
		if i+1 >= len(r.src) {
			if err := r.fill(); err != nil {
				if out > 0 {
					break
				}
				return 0, err
			}
			continue
		}

		t := r.frac - float64(i)
		v := r.src[i]*(1-t) + r.src[i+1]*t
		s := int16(max(-1, min(1, v)) * 32767)
		p[out*2] = byte(s)
		p[out*2+1] = byte(s >> 8)

		out++
		r.frac += r.step
	}

	r.written.Add(int64(out))
	return out * bytesPerSample, nil
}

// fill drops consumed samples and pulls more from the track.
func (r *pcmReader) fill() error {
	if r.eof {
		return io.EOF
	}

	drop := min(int(r.frac), len(r.src))
	r.src = append(r.src[:0], r.src[drop:]...)
	r.frac -= float64(drop)

	n, err := r.track.ReadPlayback(r.read)
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.eof = true
		}
		return err
	}
	r.src = append(r.src, r.read[:n]...)
	return nil
}
