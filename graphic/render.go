// Package graphic turns a published scope frame into a drawable
// command sequence and rasterizes it onto a termbox terminal.
package graphic

import (
	"github.com/nsf/termbox-go"
)

// YPad is the vertical padding kept clear above and below a trace.
const YPad = 2

// Styles is the color policy for one scope view.
type Styles struct {
	Trace      termbox.Attribute
	Border     termbox.Attribute
	Background termbox.Attribute
}

// DefaultStyles returns the yellow-on-black trace colors.
func DefaultStyles() Styles {
	return Styles{
		Trace:      termbox.ColorYellow,
		Border:     termbox.ColorWhite,
		Background: termbox.ColorBlack,
	}
}

// Op is one drawing command. The display surface replays the sequence
// in order, folding Translate/Scale into its point transform.
type Op interface{ op() }

// ClearOp clears the drawing area to a background color.
type ClearOp struct{ Style termbox.Attribute }

// BorderOp draws the outline rectangle of the scope view.
type BorderOp struct {
	Width, Height int
	Style         termbox.Attribute
}

// TranslateOp moves the drawing origin.
type TranslateOp struct{ X, Y int }

// ScaleOp scales subsequent geometry about the current origin.
type ScaleOp struct{ X, Y float64 }

// PolylineOp draws a connected line through the frame's points.
type PolylineOp struct {
	Xs, Ys []int
	Style  termbox.Attribute
}

func (ClearOp) op()     {}
func (BorderOp) op()    {}
func (TranslateOp) op() {}
func (ScaleOp) op()     {}
func (PolylineOp) op()  {}

// Zoom maps a normalized slider value in [0, 99] to a vertical gain.
// The low half moves in steps of 0.02 for fine control near silence,
// the high half in steps of 0.1 for coarse control at high gain.
func Zoom(v float64) float64 {
	switch {
	case v < 0:
		v = 0
	case v > 99:
		v = 99
	}

	if v > 49 {
		return 1.0 + 0.1*(v-50)
	}
	return 0.02*v + 0.01
}

// Render produces the draw sequence for one published frame. It never
// mutates engine state; callers pass a private snapshot of the front
// array. A nil or empty frame renders nothing.
func Render(frame, xs []int, zoom float64, width, height int, st Styles) []Op {
	if len(frame) == 0 || len(xs) == 0 {
		return nil
	}

	return []Op{
		ClearOp{Style: st.Background},
		BorderOp{Width: width, Height: height, Style: st.Border},
		TranslateOp{X: 0, Y: height/2 + YPad},
		ScaleOp{X: 1, Y: -zoom},
		PolylineOp{Xs: xs, Ys: frame, Style: st.Trace},
	}
}
