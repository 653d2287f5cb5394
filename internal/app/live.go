package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/pulsebar/internal/engine"
	"github.com/linuxmatters/pulsebar/internal/ui"
)

// statusEvery throttles UI updates: the terminal redraws on every message and
// cannot keep up with the render rate.
const statusEvery = 4

// fpsMeter is an exponential moving average of the frame rate.
type fpsMeter struct {
	last time.Time
	fps  float64
}

func (m *fpsMeter) tick(now time.Time) float64 {
	if !m.last.IsZero() {
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if m.fps == 0 {
				m.fps = inst
			} else {
				m.fps += (inst - m.fps) * 0.1
			}
		}
	}
	m.last = now
	return m.fps
}

// Run loads the first track and renders until ctx is cancelled. Each UI update
// is passed to send, which is typically tea.Program.Send. send is never called
// with the App locked, so the program may call back into the App while a send
// is pending.
func (a *App) Run(ctx context.Context, send func(tea.Msg)) error {
	if err := a.Load(ctx, 0); err != nil {
		return err
	}
	return a.run(ctx, engine.NewTicker(a.opts.Config.FPS), send)
}

func (a *App) run(ctx context.Context, sched engine.Scheduler, send func(tea.Msg)) error {
	var (
		meter    fpsMeter
		reported error
	)

	err := a.loop.Run(ctx, sched, func(f engine.Frame) {
		img, ok := a.composeBound(f)
		if !ok {
			return
		}
		fps := meter.tick(time.Now())

		if f.Seq%statusEvery != 0 {
			return
		}

		a.mu.Lock()
		a.watchLocked(&reported)
		status := a.statusLocked()
		notice := a.takeNoticeLocked()
		cfg := a.preview
		a.mu.Unlock()

		if notice != "" {
			send(ui.NoticeMsg(notice))
		}
		status.FPS = fps
		send(ui.FrameMsg{
			Preview: ui.RenderPreview(ui.DownsampleFrame(img, cfg)),
			Status:  status,
		})
	})

	if err == context.Canceled {
		return nil
	}
	return err
}
