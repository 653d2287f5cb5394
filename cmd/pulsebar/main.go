package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/pulsebar/internal/app"
	"github.com/linuxmatters/pulsebar/internal/cli"
	"github.com/linuxmatters/pulsebar/internal/config"
	"github.com/linuxmatters/pulsebar/internal/logger"
	"github.com/linuxmatters/pulsebar/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Files        []string      `arg:"" name:"audio" help:"Audio files to play (WAV, MP3, FLAC or Ogg Vorbis)" optional:""`
	Width        int           `help:"Viewport width in pixels" default:"1280" group:"render"`
	Height       int           `help:"Viewport height in pixels" default:"720" group:"render"`
	CanvasHeight int           `help:"Bar canvas height in pixels" default:"300" group:"render"`
	FPS          int           `name:"fps" help:"Frames per second" default:"60" group:"render"`
	Theme        int           `help:"Background theme: 1 (dusk), 2 (ocean) or 3 (ember)" default:"1" group:"render"`
	Background   string        `help:"Solid background colour as hex, overrides --theme" placeholder:"#RRGGBB" group:"render"`
	Image        string        `help:"PNG or JPEG background image, overrides --theme" group:"render"`
	Play         bool          `help:"Play audio through the default output device" group:"playback"`
	Volume       float64       `help:"Initial volume from 0 to 1" default:"0.8" group:"playback"`
	Paused       bool          `help:"Load tracks paused instead of starting playback" group:"playback"`
	Snapshot     string        `help:"Write a single frame to this PNG file and exit" placeholder:"out.png" group:"output"`
	At           time.Duration `help:"Position of the --snapshot frame" default:"0s" group:"output"`
	Frames       string        `help:"Write every frame of the first file as PNGs into this directory" placeholder:"DIR" type:"path" group:"output"`
	Seed         uint64        `help:"Seed for background shape placement (0 is random)" default:"0" group:"render"`
	NoCaption    bool          `help:"Do not draw the track name" group:"render"`
	LogLevel     string        `help:"Log level: debug, info, warn or error" env:"PULSEBAR_LOG_LEVEL" default:"warn"`
	Version      bool          `help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pulsebar"),
		kong.Description("Watch your music pulse as bars and shapes, right in the terminal."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.ExplicitGroups([]kong.Group{
			{Key: "render", Title: "Render"},
			{Key: "playback", Title: "Playback"},
			{Key: "output", Title: "Output"},
		}),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if len(CLI.Files) == 0 {
		cli.PrintError("<audio> is required")
		os.Exit(1)
	}

	// Validate input files exist
	for _, f := range append([]string{CLI.Image}, CLI.Files...) {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); os.IsNotExist(err) {
			cli.PrintError(fmt.Sprintf("input file does not exist: %s", f))
			os.Exit(1)
		}
	}

	_ = ctx // Kong context available for future use

	cfg, err := buildConfig()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	level, err := logger.ParseLevel(CLI.LogLevel)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	switch {
	case CLI.Snapshot != "":
		err = runSnapshot(cfg, level)
	case CLI.Frames != "":
		err = runExport(cfg, level)
	default:
		err = runLive(cfg, level)
	}
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func buildConfig() (config.Config, error) {
	cfg := config.Default()
	cfg.Width = CLI.Width
	cfg.Height = CLI.Height
	cfg.CanvasHeight = CLI.CanvasHeight
	cfg.FPS = CLI.FPS
	cfg.Theme = CLI.Theme - 1
	cfg.Caption = !CLI.NoCaption

	if CLI.Background != "" {
		c, err := config.ParseHexColor(CLI.Background)
		if err != nil {
			return cfg, fmt.Errorf("invalid --background: %w", err)
		}
		cfg.Background = &c
	}

	if CLI.Volume < 0 || CLI.Volume > 1 {
		return cfg, fmt.Errorf("invalid --volume %.2f (must be between 0 and 1)", CLI.Volume)
	}

	return cfg, cfg.Validate()
}

func newApp(cfg config.Config, log *slog.Logger) (*app.App, error) {
	opts := app.Options{
		Config:       cfg,
		Files:        CLI.Files,
		Volume:       CLI.Volume,
		Seed:         CLI.Seed,
		Backdrop:     CLI.Image,
		Paused:       CLI.Paused,
		NewTransport: app.SilentTransport,
		Logger:       log,
	}
	if CLI.Play {
		opts.NewTransport = app.AudibleTransport
	}
	return app.New(opts)
}

// fileLogger sends logs to a file while a full-screen UI owns the terminal.
func fileLogger(level slog.Level) (*slog.Logger, func(), error) {
	f, err := logger.OpenFile("")
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(logger.Config{Level: level, Format: "text", Output: f})
	return log, func() { f.Close() }, nil
}

func runLive(cfg config.Config, level slog.Level) error {
	log, closeLog, err := fileLogger(level)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(ui.NewLiveModel(a), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Render in a goroutine; it stops when the UI quits
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		runErr = a.Run(ctx, p.Send)
		if runErr != nil {
			p.Quit()
		}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("running UI: %w", err)
	}

	cancel()
	<-done
	return runErr
}

func runExport(cfg config.Config, level slog.Level) error {
	log, closeLog, err := fileLogger(level)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.NewExportModel()
	p := tea.NewProgram(model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exportErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		n, err := a.ExportFrames(ctx, CLI.Frames, func(progress ui.ExportProgress) {
			// Send progress update every 3 frames
			if progress.Frame%3 == 0 || progress.Frame == progress.TotalFrames {
				p.Send(progress)
			}
		})
		exportErr = err
		p.Send(ui.ExportComplete{
			Dir:         CLI.Frames,
			TotalFrames: n,
			Elapsed:     time.Since(start),
			Err:         err,
		})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("running UI: %w", err)
	}

	// Stop rendering if the UI quit first
	cancel()
	<-done

	if model.Interrupted() && errors.Is(exportErr, context.Canceled) {
		cli.PrintWarning("export interrupted")
		return nil
	}
	if exportErr != nil {
		return fmt.Errorf("during export: %w", exportErr)
	}

	cli.PrintSuccess(fmt.Sprintf("Done! Frames: %s", CLI.Frames))
	return nil
}

func runSnapshot(cfg config.Config, level slog.Level) error {
	log := logger.NewLogger(logger.Config{Level: level, Format: "text"})

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.PrintBanner()
	cli.PrintInfo("Track", filepath.Base(CLI.Files[0]))
	cli.PrintInfo("At", cli.FormatDuration(CLI.At))

	if err := a.Snapshot(ctx, CLI.Snapshot, CLI.At); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	var size int64
	if fi, err := os.Stat(CLI.Snapshot); err == nil {
		size = fi.Size()
	}
	cli.PrintSnapshotSummary(CLI.Snapshot, CLI.Files[0], CLI.At, size)
	return nil
}
