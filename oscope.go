// Package oscope wires the scope engine, the in-process demo server
// and the terminal display surface into a runnable visualizer.
package oscope

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/welle/oscope/graphic"
	"github.com/welle/oscope/scope"
	"github.com/welle/oscope/server"
	"github.com/welle/oscope/server/memserver"
)

// Signals returns the demo signal names served by the in-process
// server.
func Signals() []string {
	return []string{"sine", "saw", "noise", "lfo"}
}

func addSignals(srv *memserver.Server) {
	srv.AddBus("sine", server.AudioRate, func(t float64) float64 {
		return 0.4 * math.Sin(2*math.Pi*440*t)
	})
	srv.AddBus("saw", server.AudioRate, func(t float64) float64 {
		_, frac := math.Modf(t * 220)
		return 0.4 * (2*frac - 1)
	})
	srv.AddBus("noise", server.AudioRate, func(t float64) float64 {
		return 0.4 * (2*rand.Float64() - 1)
	})
	srv.AddBus("lfo", server.ControlRate, func(t float64) float64 {
		return 0.4 * math.Sin(2*math.Pi*0.5*t)
	})
}

// Run starts the demo: one scope over the configured signal, drawn
// into the terminal until the user quits.
func Run(cfg *Config) error {
	srv := memserver.New(memserver.Config{SampleRate: cfg.SampleRate})
	addSignals(srv)

	bus, err := srv.LookupBus(cfg.Signal)
	if err != nil {
		return err
	}

	term := graphic.NewTerminal(cfg.ZoomSlider)
	if err := term.Init(); err != nil {
		return err
	}
	defer term.Close()

	width, height := cfg.Width, cfg.Height
	if width == 0 || height == 0 {
		width, height = term.Size()
	}

	events := &server.Notifier{}

	eng, err := scope.NewEngine(scope.Config{
		Client:      srv,
		Events:      events,
		FPS:         cfg.FrameRate,
		CaptureSize: cfg.CaptureSize,
	})
	if err != nil {
		return err
	}
	defer events.Shutdown()

	events.ServerReady()

	kind := scope.KindAudioBus
	switch {
	case cfg.Spectrum:
		kind = scope.KindBusSpectrum
	case bus.Rate() == server.ControlRate:
		kind = scope.KindControlBus
	}

	inst, err := eng.CreateScope(scope.CreateOptions{
		Kind:        kind,
		Bus:         bus,
		Width:       width,
		Height:      height,
		PinnedOnTop: cfg.PinnedOnTop,
		Surface:     term,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create scope")
	}

	term.SetOnClose(func() { eng.CloseScope(inst.ID()) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	return term.Run(ctx, func() []graphic.Op {
		return eng.Render(inst.ID())
	})
}
