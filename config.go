package oscope

import (
	"github.com/pkg/errors"

	"github.com/welle/oscope/scope"
)

// Config holds the demo runner's parameters.
type Config struct {
	// Signal is the demo bus name from list-signals.
	Signal string
	// Spectrum scopes the bus's frequency magnitudes instead of its
	// waveform.
	Spectrum bool
	// Width and Height are the scope view size in cells. Zero fits the
	// terminal.
	Width, Height int
	// FrameRate is the number of acquisition ticks per second.
	FrameRate int
	// ZoomSlider is the initial zoom slider position in [0, 99].
	ZoomSlider float64
	// SampleRate is the in-process server's sample clock.
	SampleRate float64
	// CaptureSize is the capture buffer length, a power of two.
	CaptureSize int
	// PinnedOnTop asks the display surface to stay above other
	// windows.
	PinnedOnTop bool
}

// NewZeroConfig returns the default config.
func NewZeroConfig() Config {
	return Config{
		Signal:      "sine",
		FrameRate:   scope.DefaultFPS,
		ZoomSlider:  50,
		SampleRate:  44100,
		CaptureSize: scope.DefaultCaptureSize,
	}
}

// Sanitize cleans things up.
func (cfg *Config) Sanitize() error {
	if cfg.Signal == "" {
		return errors.New("no signal name; check list-signals")
	}

	if cfg.FrameRate <= 0 {
		cfg.FrameRate = scope.DefaultFPS
	}
	if cfg.FrameRate > 1000 {
		return errors.New("frame rate too high (1000 max)")
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}

	if cfg.CaptureSize == 0 {
		cfg.CaptureSize = scope.DefaultCaptureSize
	}
	if cfg.CaptureSize&(cfg.CaptureSize-1) != 0 || cfg.CaptureSize < 0 {
		return errors.Errorf("capture size %d is not a power of two", cfg.CaptureSize)
	}

	switch {
	case cfg.ZoomSlider < 0:
		cfg.ZoomSlider = 0
	case cfg.ZoomSlider > 99:
		cfg.ZoomSlider = 99
	}

	if cfg.Width < 0 || cfg.Height < 0 {
		return errors.Errorf("invalid scope size %dx%d", cfg.Width, cfg.Height)
	}

	return nil
}
