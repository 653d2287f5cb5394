package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linuxmatters/pulsebar/internal/audio"
	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/linuxmatters/pulsebar/internal/engine"
	"github.com/linuxmatters/pulsebar/internal/playback"
	"github.com/linuxmatters/pulsebar/internal/renderer"
	"github.com/linuxmatters/pulsebar/internal/ui"
)

// warmup is how much audio is rendered before a snapshot so the eased bars
// have settled the way they would during playback.
const warmup = time.Second

// ErrEmptyTrack is returned when an offline render finds no audio.
var ErrEmptyTrack = errors.New("track has no audio")

// offlineSession decodes the first playlist file completely and binds it to
// the loop with a clock the caller steps by hand.
func (a *App) offlineSession(ctx context.Context) (*audio.Track, *playback.ManualClock, *engine.Handle, error) {
	track, err := audio.Load(ctx, a.opts.Files[0])
	if err != nil {
		return nil, nil, nil, err
	}

	select {
	case <-track.Done():
	case <-ctx.Done():
		track.Release()
		<-track.Done()
		return nil, nil, nil, ctx.Err()
	}
	if err := track.Err(); err != nil {
		return nil, nil, nil, err
	}
	if track.TotalSamples() == 0 {
		return nil, nil, nil, fmt.Errorf("%s: %w", track.Name(), ErrEmptyTrack)
	}

	analyser, err := audio.NewAnalyser(config.FFTSize)
	if err != nil {
		return nil, nil, nil, err
	}

	clock := &playback.ManualClock{}
	sampler := audio.NewSampler(track, clock, analyser)
	handle := a.loop.Start(engine.NewSession(track.Name(), sampler, a.rng))

	a.log.Info("offline render", "name", track.Name(), "samples", track.TotalSamples())
	return track, clock, handle, nil
}

// analysisErr reports whether the last tick of h analysed silence in place of
// a failed transform.
func analysisErr(h *engine.Handle) error {
	if s, ok := h.Session().Sampler.(*audio.Sampler); ok {
		return s.Err()
	}
	return nil
}

// Snapshot renders the frame shown at offset at into a PNG file.
func (a *App) Snapshot(ctx context.Context, path string, at time.Duration) error {
	track, clock, handle, err := a.offlineSession(ctx)
	if err != nil {
		return err
	}
	defer track.Release()
	defer a.loop.Stop(handle)

	d, _ := track.Duration()
	at = max(0, min(at, d))

	var (
		frame engine.Frame
		ok    bool
	)
	step := engine.FrameInterval(a.opts.Config.FPS)
	for pos := max(0, at-warmup); ; pos += step {
		clock.Set(min(pos, at))
		if frame, ok = a.loop.Tick(); !ok {
			return fmt.Errorf("render at %s was skipped", pos)
		}
		if err := analysisErr(handle); err != nil {
			return fmt.Errorf("render at %s: %w", pos, err)
		}
		if pos >= at {
			break
		}
	}

	if err := renderer.SavePNG(path, a.compose(frame)); err != nil {
		return err
	}

	a.log.Info("snapshot written", "path", path, "at", at)
	return nil
}

// ExportFrames renders the first playlist file at the configured frame rate
// into dir as frame_00000.png onwards. progress, if not nil, is called after
// every frame; it receives a preview every few frames.
func (a *App) ExportFrames(ctx context.Context, dir string, progress func(ui.ExportProgress)) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	track, clock, handle, err := a.offlineSession(ctx)
	if err != nil {
		return 0, err
	}
	defer track.Release()
	defer a.loop.Stop(handle)

	d, _ := track.Duration()
	step := engine.FrameInterval(a.opts.Config.FPS)
	total := int(d/step) + 1
	start := time.Now()

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		clock.Set(time.Duration(i) * step)
		frame, ok := a.loop.Tick()
		if !ok {
			return i, fmt.Errorf("frame %d was skipped", i)
		}
		if err := analysisErr(handle); err != nil {
			return i, fmt.Errorf("frame %d: %w", i, err)
		}

		img := a.compose(frame)
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := renderer.SavePNG(path, img); err != nil {
			return i, fmt.Errorf("error writing frame %d: %w", i, err)
		}

		if progress != nil {
			p := ui.ExportProgress{
				Frame:       i + 1,
				TotalFrames: total,
				Elapsed:     time.Since(start),
			}
			if i%6 == 0 {
				a.mu.Lock()
				cfg := a.preview
				a.mu.Unlock()
				p.Preview = ui.RenderPreview(ui.DownsampleFrame(img, cfg))
			}
			progress(p)
		}
	}

	a.log.Info("frames exported", "dir", dir, "frames", total, "elapsed", time.Since(start))
	return total, nil
}
