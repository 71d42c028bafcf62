package scope

import (
	"github.com/welle/oscope/dsp"
	"github.com/welle/oscope/graphic"
	"github.com/welle/oscope/server"
)

// Kind selects a scope's acquisition strategy. It is fixed at creation
// and never re-dispatched at runtime.
type Kind int

const (
	// KindAudioBus mirrors an audio-rate bus into the capture buffer.
	KindAudioBus Kind = iota
	// KindControlBus mirrors a control-rate bus.
	KindControlBus
	// KindRawBuffer polls a server buffer directly, no mirror process.
	KindRawBuffer
	// KindBusSpectrum mirrors the frequency magnitudes of a bus.
	KindBusSpectrum
)

func (k Kind) String() string {
	switch k {
	case KindAudioBus:
		return "audio-bus"
	case KindControlBus:
		return "control-bus"
	case KindRawBuffer:
		return "raw-buffer"
	case KindBusSpectrum:
		return "bus-spectrum"
	}
	return "unknown"
}

// mirrored reports whether the kind owns a capture buffer fed by a
// server-side mirror process.
func (k Kind) mirrored() bool {
	return k != KindRawBuffer
}

func (k Kind) mirrorKind() server.MirrorKind {
	if k == KindBusSpectrum {
		return server.MirrorSpectrum
	}
	return server.MirrorSignal
}

// Surface is the engine's view of a display window: it can be asked to
// repaint and it exposes the current zoom slider position in [0, 99].
type Surface interface {
	Repaint()
	Zoom() float64
}

// Instance is one live visualization target.
type Instance struct {
	id   int
	kind Kind

	bus     server.Bus
	capture server.Buffer
	mirror  server.Mirror // guarded by the engine mutex

	width, height int
	pinned        bool

	xs      []int
	db      *DoubleBuffer
	down    dsp.Downsampler
	scratch []float64

	surface Surface
	styles  graphic.Styles
}

// ID returns the scope's unique identifier.
func (inst *Instance) ID() int { return inst.id }

// Kind returns the acquisition kind.
func (inst *Instance) Kind() Kind { return inst.kind }

// Width returns the display width in pixels.
func (inst *Instance) Width() int { return inst.width }

// Height returns the display height in pixels.
func (inst *Instance) Height() int { return inst.height }

// PinnedOnTop reports whether the display surface should stay above
// other windows.
func (inst *Instance) PinnedOnTop() bool { return inst.pinned }

// Capture returns the capture buffer handle.
func (inst *Instance) Capture() server.Buffer { return inst.capture }

// XAxis returns the fixed 0..width-1 column sequence. Callers must
// treat it as read-only.
func (inst *Instance) XAxis() []int { return inst.xs }

// Frame copies the scope's current front frame into dst.
func (inst *Instance) Frame(dst []int) []int {
	return inst.db.Snapshot(dst)
}

// neutral is the idle display value: a centered flat line.
func (inst *Instance) neutral() int {
	return inst.height / 2
}

func xAxis(width int) []int {
	xs := make([]int, width)
	for i := range xs {
		xs[i] = i
	}
	return xs
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
