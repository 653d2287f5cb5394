package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for files it has no decoder for.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// AudioDecoder defines the interface for all audio format decoders
type AudioDecoder interface {
	// ReadChunk reads the next chunk of mono samples as float64 in [-1, 1].
	// Returns io.EOF when the stream is exhausted.
	ReadChunk(numSamples int) ([]float64, error)

	// SampleRate returns the audio sample rate in Hz
	SampleRate() int

	// NumChannels returns the number of channels in the source (1=mono, 2=stereo)
	NumChannels() int

	// Close closes the decoder and releases resources
	Close() error
}

// Open picks a decoder from the file extension.
func Open(filename string) (AudioDecoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	case ".ogg", ".oga":
		return NewOGGDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
	}
}
