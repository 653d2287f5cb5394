// Package app wires audio decoding, playback, the render loop and the frame
// compositor together, and owns the lifecycle of the loaded track.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"

	"github.com/linuxmatters/pulsebar/internal/audio"
	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/linuxmatters/pulsebar/internal/engine"
	"github.com/linuxmatters/pulsebar/internal/playback"
	"github.com/linuxmatters/pulsebar/internal/renderer"
	"github.com/linuxmatters/pulsebar/internal/ui"
	"golang.org/x/image/font"
)

// endTolerance is how close to the end a stopped transport counts as ended.
const endTolerance = 50 * time.Millisecond

// ErrNoFiles is returned when there is nothing to play.
var ErrNoFiles = errors.New("no audio files given")

// TransportFactory creates the playback clock for a newly loaded track.
type TransportFactory func(track *audio.Track, volume float64) (playback.Transport, error)

// SilentTransport advances in real time without producing sound.
func SilentTransport(track *audio.Track, _ float64) (playback.Transport, error) {
	return playback.NewWallClock(track.Duration), nil
}

// AudibleTransport plays through the default audio device.
func AudibleTransport(track *audio.Track, volume float64) (playback.Transport, error) {
	return playback.NewPlayer(track, volume)
}

// Options configures an App.
type Options struct {
	Config       config.Config
	Files        []string
	Volume       float64 // Initial volume in [0, 1]
	Seed         uint64  // Shape placement seed; zero picks one at random
	Backdrop     string  // Optional PNG or JPEG drawn behind everything
	Paused       bool    // Leave newly loaded tracks paused
	NewTransport TransportFactory
	Logger       *slog.Logger
}

// App holds the playlist and the state bound to the current track.
type App struct {
	opts Options
	log  *slog.Logger
	rng  *rand.Rand

	canvas *renderer.Canvas
	loop   *engine.Loop

	mu        sync.Mutex // Guards everything below
	frame     *renderer.Frame
	backdrop  *image.RGBA // Custom backdrop image, nil when using themes
	theme     int
	volume    float64
	index     int
	track     *audio.Track
	transport playback.Transport
	handle    *engine.Handle
	wantPlay  bool // The user asked for playback; cleared when the track ends
	cancel    context.CancelFunc
	preview   ui.PreviewConfig
	notice    string // Pending user-facing message, cleared once shown
}

// New validates opts and prepares an idle App. Nothing is loaded yet.
func New(opts Options) (*App, error) {
	if len(opts.Files) == 0 {
		return nil, ErrNoFiles
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.NewTransport == nil {
		opts.NewTransport = SilentTransport
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	cfg := opts.Config
	a := &App{
		opts:    opts,
		log:     opts.Logger,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		canvas:  renderer.NewCanvas(cfg.CanvasWidth(), cfg.CanvasHeight),
		theme:   cfg.Theme,
		volume:  max(0, min(1, opts.Volume)),
		preview: ui.DefaultPreviewConfig(),
	}
	a.loop = engine.NewLoop(a.canvas, opts.Logger.With(slog.String("component", "loop")))

	var face font.Face
	if cfg.Caption {
		f, err := renderer.LoadFont(config.CaptionSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load caption font: %w", err)
		}
		face = f
	}
	a.frame = renderer.NewFrame(cfg.Width, cfg.Height, face)

	if opts.Backdrop != "" {
		bg, err := renderer.LoadBackdropImage(opts.Backdrop, cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("failed to load backdrop: %w", err)
		}
		a.backdrop = bg
	}
	a.applyBackdropLocked()

	a.log.Debug("app created", "files", len(opts.Files), "seed", seed,
		"viewport", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
	return a, nil
}

// Loop exposes the render loop.
func (a *App) Loop() *engine.Loop {
	return a.loop
}

// Load decodes file i of the playlist and binds it to the render loop. The
// previous track keeps rendering until the new one is ready, then its handle
// is superseded and its resources released.
func (a *App) Load(ctx context.Context, i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadLocked(ctx, i)
}

func (a *App) loadLocked(ctx context.Context, i int) error {
	n := len(a.opts.Files)
	i = ((i % n) + n) % n
	file := a.opts.Files[i]

	decodeCtx, cancel := context.WithCancel(ctx)
	track, err := audio.Load(decodeCtx, file)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to load %s: %w", filepath.Base(file), err)
	}

	transport, err := a.opts.NewTransport(track, a.volume)
	if err != nil {
		cancel()
		track.Release()
		<-track.Done()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	analyser, err := audio.NewAnalyser(config.FFTSize)
	if err != nil {
		cancel()
		track.Release()
		<-track.Done()
		_ = transport.Close()
		return err
	}

	sampler := audio.NewSampler(track, transport, analyser)
	handle := a.loop.Start(engine.NewSession(track.Name(), sampler, a.rng))

	a.releaseLocked()
	a.index = i
	a.track = track
	a.transport = transport
	a.handle = handle
	a.cancel = cancel

	a.wantPlay = !a.opts.Paused
	if a.wantPlay {
		transport.Play()
	}

	a.log.Info("track loaded", "name", track.Name(), "index", i,
		"sample_rate", track.SampleRate(), "channels", track.NumChannels())
	return nil
}

// releaseLocked tears down the current track. The loop handle must already
// have been superseded or stopped.
func (a *App) releaseLocked() {
	if a.track == nil {
		return
	}

	a.cancel()
	a.track.Release()
	if err := a.transport.Close(); err != nil {
		a.log.Warn("closing transport", "error", err)
	}
	<-a.track.Done()

	a.track = nil
	a.transport = nil
	a.handle = nil
	a.cancel = nil
}

// Close stops rendering and releases the current track.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle != nil {
		a.loop.Stop(a.handle)
	}
	a.releaseLocked()
}

// TogglePause plays or pauses. Playing a track that has ended starts it again
// from the beginning.
func (a *App) TogglePause() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transport == nil {
		return
	}

	if a.wantPlay && a.transport.Playing() {
		a.transport.Pause()
		a.wantPlay = false
		return
	}

	if a.endedLocked() {
		a.transport.Rewind()
	}
	a.transport.Play()
	a.wantPlay = true
}

// endedLocked reports whether the whole track has been heard. Resampling
// drops a few trailing samples, hence the tolerance.
func (a *App) endedLocked() bool {
	d, complete := a.track.Duration()
	return complete && a.transport.Position() >= d-endTolerance
}

// Next loads the following playlist entry, wrapping at the end.
func (a *App) Next() {
	a.step(1)
}

// Prev loads the previous playlist entry, wrapping at the start.
func (a *App) Prev() {
	a.step(-1)
}

func (a *App) step(delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.loadLocked(context.Background(), a.index+delta); err != nil {
		a.log.Warn("load failed", "error", err)
		a.notice = err.Error()
	}
}

// CycleTheme switches to the next backdrop theme. A custom backdrop image or
// colour is dropped in favour of the theme gradients.
func (a *App) CycleTheme() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.theme = config.NextTheme(a.theme)
	a.backdrop = nil
	a.opts.Config.Background = nil
	a.applyBackdropLocked()
	a.log.Debug("theme changed", "theme", config.Themes[a.theme].Name)
}

func (a *App) applyBackdropLocked() {
	cfg := a.opts.Config
	switch {
	case a.backdrop != nil:
		a.frame.SetBackdrop(a.backdrop)
	case cfg.Background != nil:
		a.frame.SetBackdrop(renderer.SolidBackdrop(cfg.Width, cfg.Height, *cfg.Background))
	default:
		a.frame.SetBackdrop(renderer.GradientBackdrop(cfg.Width, cfg.Height, config.Themes[a.theme]))
	}
}

// AdjustVolume changes the volume by delta, clamped to [0, 1].
func (a *App) AdjustVolume(delta float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.volume = max(0, min(1, a.volume+delta))
	if a.transport != nil {
		a.transport.SetVolume(a.volume)
	}
}

// Resize sets the terminal preview size.
func (a *App) Resize(cfg ui.PreviewConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.preview = cfg
}

// Status snapshots the state shown in the status lines.
func (a *App) Status() ui.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusLocked()
}

func (a *App) statusLocked() ui.Status {
	s := ui.Status{
		Index:  a.index,
		Count:  len(a.opts.Files),
		Theme:  a.themeNameLocked(),
		Volume: a.volume,
	}
	if a.track == nil {
		return s
	}

	stats := a.track.Stats()
	s.Track = a.track.Name()
	s.Position = a.transport.Position()
	s.Duration = stats.Decoded
	s.Complete = stats.Complete
	s.Playing = a.transport.Playing()
	s.Peak = stats.Peak
	s.RMS = stats.RMS
	return s
}

func (a *App) themeNameLocked() string {
	switch {
	case a.backdrop != nil:
		return "image"
	case a.opts.Config.Background != nil:
		return "solid"
	}
	return config.Themes[a.theme].Name
}

// compose draws the viewport for a frame produced by the loop.
func (a *App) compose(f engine.Frame) *image.RGBA {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.composeLocked(f)
}

// composeBound draws the viewport only if f belongs to the bound track. A
// frame whose handle was superseded after its tick finished is dropped, since
// its track may already be released.
func (a *App) composeBound(f engine.Frame) (*image.RGBA, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle == nil || f.Handle != a.handle {
		return nil, false
	}
	return a.composeLocked(f), true
}

func (a *App) composeLocked(f engine.Frame) *image.RGBA {
	caption := ""
	if a.opts.Config.Caption {
		caption = f.Handle.Session().Name
	}
	return a.frame.Compose(a.canvas, f.Shapes, caption)
}

// takeNoticeLocked returns and clears the pending message.
func (a *App) takeNoticeLocked() string {
	n := a.notice
	a.notice = ""
	return n
}

// watchLocked notices the end of the track and queues decode failures once.
func (a *App) watchLocked(reported *error) {
	if a.track == nil {
		return
	}

	if a.wantPlay && !a.transport.Playing() && a.endedLocked() {
		a.wantPlay = false
		a.log.Debug("track ended", "name", a.track.Name())
	}

	if err := a.track.Err(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, *reported) {
		*reported = err
		a.log.Warn("decode error", "name", a.track.Name(), "error", err)
		a.notice = fmt.Sprintf("%s: %v", a.track.Name(), err)
	}
}
