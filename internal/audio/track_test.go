package audio

import (
	"context"
	"errors"
	"go/format"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_WindowReadsEndingAtPosition(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)
	require.NoError(t, tr.Write([]float64{1, 2, 3, 4, 5}))

	dst := make([]float64, 3)
	tr.Window(4, dst)
	assert.Equal(t, []float64{2, 3, 4}, dst)
}

// TestTrack_WindowOutsideRangeIsSilence checks that windows overlapping the
// start or running past the decoded end are zero filled.
func TestTrack_WindowOutsideRangeIsSilence(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)
	require.NoError(t, tr.Write([]float64{1, 2, 3}))

	dst := []float64{9, 9, 9, 9}
	tr.Window(2, dst)
	assert.Equal(t, []float64{0, 0, 1, 2}, dst)

	tr.Window(6, dst)
	assert.Equal(t, []float64{3, 0, 0, 0}, dst)

	tr.Release()
	tr.Window(3, dst)
	assert.Equal(t, []float64{0, 0, 0, 0}, dst)
}

// TestTrack_ReadPlaybackIsIndependentOfWindow verifies the playback reader
// keeps its own position however the analyser reads.
func TestTrack_ReadPlaybackIsIndependentOfWindow(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)
	require.NoError(t, tr.Write([]float64{1, 2, 3, 4}))

	window := make([]float64, 4)
	tr.Window(4, window)

	dst := make([]float64, 3)
	n, err := tr.ReadPlayback(dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3}, dst)

	n, err = tr.ReadPlayback(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 4.0, dst[0])

	tr.Finish(nil)
	_, err = tr.ReadPlayback(dst)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTrack_RewindPlayback(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)
	require.NoError(t, tr.Write([]float64{1, 2}))
	tr.Finish(nil)

	dst := make([]float64, 4)
	_, err := tr.ReadPlayback(dst)
	require.NoError(t, err)
	_, err = tr.ReadPlayback(dst)
	require.ErrorIs(t, err, io.EOF)

	tr.RewindPlayback()
	n, err := tr.ReadPlayback(dst)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, dst[:n])
}

// TestTrack_ReadPlaybackBlocksUntilWrite checks the reader waits for the
// producer rather than reporting a premature EOF.
func TestTrack_ReadPlaybackBlocksUntilWrite(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)

	var wg sync.WaitGroup
	var n int
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err = tr.ReadPlayback(make([]float64, 8))
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tr.Write([]float64{0.1, 0.2}))
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestTrack_ReleaseUnblocksReader ensures discarding a track never strands
// the playback goroutine.
func TestTrack_ReleaseUnblocksReader(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.ReadPlayback(make([]float64, 8))
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	tr.Release()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrTrackClosed)
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after Release")
	}

	assert.ErrorIs(t, tr.Write([]float64{1}), ErrTrackClosed)
}

func TestTrack_Stats(t *testing.T) {
	tr := NewTrack("t", 4, 1, 16)
	require.NoError(t, tr.Write([]float64{0.5, -1, 0.5, 0}))

	stats := tr.Stats()
	assert.False(t, stats.Complete)
	assert.Equal(t, time.Second, stats.Decoded)
	assert.Equal(t, 1.0, stats.Peak)
	assert.InDelta(t, 0.6124, stats.RMS, 1e-4)

	tr.Finish(nil)
	assert.True(t, tr.Stats().Complete)

	d, complete := tr.Duration()
	assert.True(t, complete)
	assert.Equal(t, time.Second, d)
}

func TestTrack_FinishWithErrorIsNotComplete(t *testing.T) {
	tr := NewTrack("t", 8000, 1, 16)
	tr.Finish(errors.New("corrupt frame"))

	assert.False(t, tr.Stats().Complete)
	assert.EqualError(t, tr.Err(), "corrupt frame")
}

// TestLoad_DecodesWholeFile runs the background decoder against a WAV
// fixture larger than one decode chunk.
func TestLoad_DecodesWholeFile(t *testing.T) {
	samples := sine(decodeChunk*2+100, 8000, 440, 0.5)
	path := writeWAV(t, 8000, mono(samples))

	tr, err := Load(context.Background(), path)
	require.NoError(t, err)

	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("decoder did not finish")
	}

	require.NoError(t, tr.Err())
	assert.Equal(t, "fixture.wav", tr.Name())
	assert.Equal(t, 8000, tr.SampleRate())
	assert.Equal(t, len(samples), tr.TotalSamples())
	assert.InDelta(t, 0.5, tr.Stats().Peak, 1e-3)
}

// TestLoad_ReleaseStopsDecoder verifies a superseded track's decode goroutine
// exits. Release before the decoder finishes must still close Done.
func TestLoad_ReleaseStopsDecoder(t *testing.T) {
	path := writeWAV(t, 8000, mono(sine(decodeChunk*8, 8000, 440, 0.5)))

	tr, err := Load(context.Background(), path)
	require.NoError(t, err)
	tr.Release()

	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("decoder still running after Release")
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	path := writeWAV(t, 8000, mono(sine(decodeChunk, 8000, 440, 0.5)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := Load(ctx, path)
	require.NoError(t, err)
	<-tr.Done()

	assert.ErrorIs(t, tr.Err(), context.Canceled)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(context.Background(), "song.ogg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// TestTrackSourceIsFormatted keeps the Track doc comment list in the indented
// form gofmt rewrites it to.
func TestTrackSourceIsFormatted(t *testing.T) {
	src, err := os.ReadFile("track.go")
	require.NoError(t, err)

	formatted, err := format.Source(src)
	require.NoError(t, err)
	assert.Equal(t, string(formatted), string(src))
}
