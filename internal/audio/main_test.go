package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeWAV encodes 16-bit PCM into a temporary WAV file and returns its path.
// frames holds one slice per time sample with one value per channel in [-1, 1].
func writeWAV(t *testing.T, sampleRate int, frames [][]float64) string {
	t.Helper()

	channels := len(frames[0])
	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	defer f.Close()

	data := make([]int, 0, len(frames)*channels)
	for _, frame := range frames {
		for _, v := range frame {
			data = append(data, int(math.Round(v*32767)))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing fixture: %v", err)
	}
	return path
}

// sine returns n mono samples of a tone.
func sine(n, sampleRate int, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// mono wraps samples as single-channel frames.
func mono(samples []float64) [][]float64 {
	frames := make([][]float64, len(samples))
	for i, s := range samples {
		frames[i] = []float64{s}
	}
	return frames
}

// fakeClock is a settable Clock.
type fakeClock struct {
	pos     time.Duration
	playing bool
}

func (c *fakeClock) Position() time.Duration { return c.pos }
func (c *fakeClock) Playing() bool           { return c.playing }
