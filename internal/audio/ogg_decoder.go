package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// OGGDecoder implements AudioDecoder for Ogg Vorbis files
type OGGDecoder struct {
	reader *oggvorbis.Reader
	file   *os.File
	buf    []float32
}

// NewOGGDecoder creates a new Ogg Vorbis decoder
func NewOGGDecoder(filename string) (*OGGDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create OGG decoder: %w", err)
	}

	return &OGGDecoder{
		reader: reader,
		file:   f,
	}, nil
}

// ReadChunk reads the next chunk of samples, averaging channels to mono
func (d *OGGDecoder) ReadChunk(numSamples int) ([]float64, error) {
	channels := d.reader.Channels()
	size := numSamples * channels
	if cap(d.buf) < size {
		d.buf = make([]float32, size)
	}
	buf := d.buf[:size]

	n, err := d.reader.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read OGG data: %w", err)
	}

	frames := n / channels
	if frames == 0 {
		return nil, io.EOF
	}

	samples := make([]float64, frames)
	for i := range samples {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf[i*channels+ch])
		}
		samples[i] = sum / float64(channels)
	}

	return samples, nil
}

// SampleRate returns the sample rate
func (d *OGGDecoder) SampleRate() int {
	return d.reader.SampleRate()
}

// NumChannels returns the number of audio channels
func (d *OGGDecoder) NumChannels() int {
	return d.reader.Channels()
}

// Close closes the decoder and releases resources
func (d *OGGDecoder) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}
