package audio

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements AudioDecoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	sampleRate  int
	numChannels int

	// Samples decoded from the last frame but not yet returned
	pending []float64
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	// Open reads the signature and the StreamInfo block
	stream, err := flac.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	return &FLACDecoder{
		stream:      stream,
		sampleRate:  int(stream.Info.SampleRate),
		numChannels: int(stream.Info.NChannels),
	}, nil
}

// ReadChunk reads the next chunk of samples
func (d *FLACDecoder) ReadChunk(numSamples int) ([]float64, error) {
	samples := make([]float64, 0, numSamples)

	for len(samples) < numSamples {
		if len(d.pending) > 0 {
			n := min(numSamples-len(samples), len(d.pending))
			samples = append(samples, d.pending[:n]...)
			d.pending = d.pending[n:]
			continue
		}

		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				if len(samples) == 0 {
					return nil, io.EOF
				}
				return samples, nil
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// One subframe per channel; downmix by averaging
		maxVal := float64(int64(1) << (frame.BitsPerSample - 1))
		frameSamples := len(frame.Subframes[0].Samples)
		decoded := make([]float64, frameSamples)
		for i := 0; i < frameSamples; i++ {
			var sum int64
			for _, subframe := range frame.Subframes {
				sum += int64(subframe.Samples[i])
			}
			decoded[i] = float64(sum) / float64(len(frame.Subframes)) / maxVal
		}
		d.pending = decoded
	}

	return samples, nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		err := d.stream.Close()
		d.stream = nil
		return err
	}
	return nil
}
