package graphic

import (
	"context"
	"sync"

	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

// Terminal is a termbox-backed display surface. It satisfies the scope
// engine's Surface contract: it serves repaint requests and exposes a
// normalized zoom slider adjusted with the +/- keys.
type Terminal struct {
	mu      sync.Mutex
	slider  float64
	onClose func()

	repaint chan struct{}
}

// NewTerminal returns a surface with the zoom slider at the given
// position in [0, 99].
func NewTerminal(slider float64) *Terminal {
	return &Terminal{
		slider:  slider,
		repaint: make(chan struct{}, 1),
	}
}

// Init readies the terminal for drawing.
func (t *Terminal) Init() error {
	if err := termbox.Init(); err != nil {
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	return nil
}

// Close restores the terminal.
func (t *Terminal) Close() {
	termbox.Close()
}

// Size returns the drawable area in cells.
func (t *Terminal) Size() (width, height int) {
	return termbox.Size()
}

// Zoom returns the current slider position in [0, 99].
func (t *Terminal) Zoom() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slider
}

// Repaint asks the surface to redraw. It never blocks; coalescing
// pending requests is fine, the next paint reads the newest frame.
func (t *Terminal) Repaint() {
	select {
	case t.repaint <- struct{}{}:
	default:
	}
}

// SetOnClose registers the window-closing hook.
func (t *Terminal) SetOnClose(fn func()) {
	t.mu.Lock()
	t.onClose = fn
	t.mu.Unlock()
}

func (t *Terminal) nudge(delta float64) {
	t.mu.Lock()
	t.slider += delta
	switch {
	case t.slider < 0:
		t.slider = 0
	case t.slider > 99:
		t.slider = 99
	}
	t.mu.Unlock()
}

// Run drives the event and paint loop until the user quits or ctx is
// canceled. render is called on every repaint request to fetch the
// current draw sequence.
func (t *Terminal) Run(ctx context.Context, render func() []Op) error {
	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Type == termbox.EventInterrupt {
				return
			}
		}
	}()

	defer func() {
		t.mu.Lock()
		fn := t.onClose
		t.mu.Unlock()
		if fn != nil {
			fn()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-t.repaint:
			t.DrawOps(render())

		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				switch {
				case ev.Key == termbox.KeyEsc, ev.Key == termbox.KeyCtrlC,
					ev.Ch == 'q':
					return nil
				case ev.Ch == '+', ev.Ch == '=':
					t.nudge(1)
				case ev.Ch == '-', ev.Ch == '_':
					t.nudge(-1)
				}
			case termbox.EventError:
				return errors.Wrap(ev.Err, "terminal event")
			}
		}
	}
}

// DrawOps replays a draw sequence onto the terminal, folding the
// Translate and Scale commands into the point transform.
func (t *Terminal) DrawOps(ops []Op) {
	var (
		offX, offY int
		scaleY     = 1.0
	)

	for _, op := range ops {
		switch op := op.(type) {
		case ClearOp:
			termbox.Clear(termbox.ColorDefault, op.Style)

		case BorderOp:
			drawBorder(op.Width, op.Height, op.Style)

		case TranslateOp:
			offX += op.X
			offY += op.Y

		case ScaleOp:
			scaleY *= op.Y

		case PolylineOp:
			drawPolyline(op, offX, offY, scaleY)
		}
	}

	termbox.Flush()
}

func drawBorder(width, height int, style termbox.Attribute) {
	for x := 0; x < width; x++ {
		termbox.SetCell(x, 0, '─', style, termbox.ColorDefault)
		termbox.SetCell(x, height-1, '─', style, termbox.ColorDefault)
	}
	for y := 0; y < height; y++ {
		termbox.SetCell(0, y, '│', style, termbox.ColorDefault)
		termbox.SetCell(width-1, y, '│', style, termbox.ColorDefault)
	}

	termbox.SetCell(0, 0, '┌', style, termbox.ColorDefault)
	termbox.SetCell(width-1, 0, '┐', style, termbox.ColorDefault)
	termbox.SetCell(0, height-1, '└', style, termbox.ColorDefault)
	termbox.SetCell(width-1, height-1, '┘', style, termbox.ColorDefault)
}

func drawPolyline(op PolylineOp, offX, offY int, scaleY float64) {
	_, rows := termbox.Size()

	prevY := 0
	for i := range op.Xs {
		if i >= len(op.Ys) {
			break
		}

		x := offX + op.Xs[i]
		y := offY + int(scaleY*float64(op.Ys[i]))

		if i == 0 {
			prevY = y
		}

		// Fill the vertical span to the previous column so steep
		// slopes stay connected.
		lo, hi := y, prevY
		if lo > hi {
			lo, hi = hi, lo
		}
		for yy := lo; yy <= hi; yy++ {
			if yy >= 0 && yy < rows {
				termbox.SetCell(x, yy, '█', op.Style, termbox.ColorDefault)
			}
		}

		prevY = y
	}
}
