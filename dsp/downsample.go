// Package dsp provides the sample processing between a capture buffer
// and a scope's display-resolution frame: fixed-stride downsampling
// and the frequency-magnitude transform for spectrum scopes.
package dsp

// DownsamplerConfig fixes a scope's geometry at creation time.
type DownsamplerConfig struct {
	CaptureSize int // capture buffer length, power of two
	Width       int // display width in pixels
	Height      int // display height in pixels
	YPad        int // vertical padding kept clear above and below
}

// Downsampler reduces a capture buffer to one display-width frame of
// scaled integer sample points.
type Downsampler interface {
	// Fill writes one frame into dst from the capture content in src.
	Fill(dst []int, src []float64)

	// Step returns the fixed read stride.
	Step() int
}

type downsampler struct {
	step  int
	width int
	scale float64
}

// NewDownsampler builds a downsampler for the given geometry. The
// stride is the integer quotient of capture size and width, so the
// same display column always reads the same capture slot.
func NewDownsampler(cfg DownsamplerConfig) Downsampler {
	step := 1
	if cfg.Width > 0 && cfg.CaptureSize >= cfg.Width {
		step = cfg.CaptureSize / cfg.Width
	}

	return &downsampler{
		step:  step,
		width: cfg.Width,
		scale: float64(cfg.Height - 2*cfg.YPad),
	}
}

func (ds *downsampler) Step() int { return ds.step }

func (ds *downsampler) Fill(dst []int, src []float64) {
	for x := 0; x < ds.width; x++ {
		idx := x * ds.step
		if idx >= len(src) {
			break
		}
		dst[x] = int(src[idx] * ds.scale)
	}
}
