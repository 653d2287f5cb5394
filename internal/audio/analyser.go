package audio

import (
	"fmt"
	"math"

	"github.com/argusdusty/gofft"
	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/mjibson/go-dsp/window"
)

// Analyser turns a window of time-domain samples into byte magnitudes, one
// per frequency bin, the same way a browser AnalyserNode does: Blackman
// window, FFT, magnitude smoothing over time, then a linear map of the
// decibel range onto 0-255.
//
// All buffers are allocated once; ByteFrequencyData does not allocate.
type Analyser struct {
	fftSize     int
	smoothing   float64
	minDecibels float64
	maxDecibels float64

	window   []float64
	spectrum []complex128
	smoothed []float64
}

// NewAnalyser creates an analyser for the given window size, which must be
// a power of two of at least 32.
func NewAnalyser(fftSize int) (*Analyser, error) {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two >= 32", fftSize)
	}
	if err := gofft.Prepare(fftSize); err != nil {
		return nil, fmt.Errorf("failed to prepare fft of size %d: %w", fftSize, err)
	}

	return &Analyser{
		fftSize:     fftSize,
		smoothing:   config.Smoothing,
		minDecibels: config.MinDecibels,
		maxDecibels: config.MaxDecibels,
		window:      window.Blackman(fftSize),
		spectrum:    make([]complex128, fftSize),
		smoothed:    make([]float64, fftSize/2),
	}, nil
}

// FFTSize returns the analysis window length in samples.
func (a *Analyser) FFTSize() int {
	return a.fftSize
}

// BinCount returns the number of frequency bins, half the window size.
func (a *Analyser) BinCount() int {
	return a.fftSize / 2
}

// Reset forgets the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}

// ByteFrequencyData analyses samples (len FFTSize) into dst (len BinCount).
// If the transform fails dst is zeroed and the smoothing history is kept.
func (a *Analyser) ByteFrequencyData(samples []float64, dst []uint8) error {
	for i := range a.spectrum {
		var s float64
		if i < len(samples) {
			s = samples[i]
		}
		a.spectrum[i] = complex(s*a.window[i], 0)
	}

	if err := gofft.FFT(a.spectrum); err != nil {
		clear(dst)
		return fmt.Errorf("fft: %w", err)
	}

	scale := 1.0 / float64(a.fftSize)
	byteScale := 255.0 / (a.maxDecibels - a.minDecibels)

	for k := 0; k < len(a.smoothed) && k < len(dst); k++ {
		c := a.spectrum[k]
		magnitude := math.Hypot(real(c), imag(c)) * scale

		v := a.smoothing*a.smoothed[k] + (1-a.smoothing)*magnitude
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v

		dst[k] = toByte((decibels(v) - a.minDecibels) * byteScale)
	}
	return nil
}

// decibels converts a linear magnitude; zero maps to -Inf.
func decibels(v float64) float64 {
	return 20 * math.Log10(v)
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Floor(v))
}
