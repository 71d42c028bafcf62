package memserver

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/welle/oscope/dsp"
	"github.com/welle/oscope/server"
)

// StartMirror spawns a goroutine that continuously writes bus signal
// (or its frequency magnitudes) into dst on a block cadence.
func (s *Server) StartMirror(group server.Group, kind server.MirrorKind, bus server.Bus, dst server.Buffer) (server.Mirror, error) {
	if _, ok := group.(*memGroup); !ok || group == nil {
		return nil, errors.Errorf("foreign group handle %v", group)
	}

	mb, err := s.ownBuffer(dst)
	if err != nil {
		return nil, err
	}

	b, ok := bus.(*Bus)
	if !ok || b.srv != s {
		return nil, errors.Errorf("foreign bus handle %v", bus)
	}

	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil, server.ErrNotConnected
	}
	if !mb.live {
		s.mu.Unlock()
		return nil, server.ErrBufferGone
	}
	s.mu.Unlock()

	m := &mirror{
		srv:  s,
		bus:  b,
		dst:  mb,
		kind: kind,
		quit: make(chan struct{}),
	}

	if kind == server.MirrorSpectrum {
		m.window = make([]float64, mb.Size())
		m.spec = dsp.NewSpectrum(mb.Size())
	}

	b.addMirror(m)
	go m.run()

	return m, nil
}

type mirror struct {
	srv  *Server
	bus  *Bus
	dst  *memBuffer
	kind server.MirrorKind

	cursor int       // ring write position in dst
	clock  float64   // sample clock in seconds
	window []float64 // time-domain ring, spectrum kind only
	wpos   int
	spec   *dsp.Spectrum

	quit chan struct{}
	once sync.Once
}

// Stop terminates the mirror process. It fails if the host server has
// already gone away; the process is dead regardless.
func (m *mirror) Stop() error {
	if !m.srv.Connected() {
		return errors.Wrapf(server.ErrNotConnected, "stop mirror of %s", m.bus)
	}

	m.bus.dropMirror(m)
	m.halt()
	return nil
}

func (m *mirror) halt() {
	m.once.Do(func() { close(m.quit) })
}

func (m *mirror) run() {
	block := m.srv.cfg.BlockSize
	period := time.Duration(float64(block) / m.srv.cfg.SampleRate * float64(time.Second))
	if period < time.Millisecond {
		period = time.Millisecond
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	scratch := make([]float64, block)

	for {
		select {
		case <-m.quit:
			return
		case <-ticker.C:
		}

		m.fill(scratch)
		m.write(scratch)
	}
}

func (m *mirror) fill(scratch []float64) {
	dt := 1.0 / m.srv.cfg.SampleRate

	switch m.bus.rate {
	case server.AudioRate:
		for i := range scratch {
			scratch[i] = m.bus.sample(m.clock)
			m.clock += dt
		}
	case server.ControlRate:
		// Control buses hold their value for the whole block.
		v := m.bus.sample(m.clock)
		m.clock += dt * float64(len(scratch))
		for i := range scratch {
			scratch[i] = v
		}
	}
}

func (m *mirror) write(block []float64) {
	m.srv.mu.Lock()
	defer m.srv.mu.Unlock()

	if !m.srv.connected || !m.dst.live {
		return
	}

	if m.kind == server.MirrorSpectrum {
		for _, v := range block {
			m.window[m.wpos] = v
			m.wpos = (m.wpos + 1) % len(m.window)
		}
		m.spec.Magnitudes(m.dst.data, m.window)
		return
	}

	m.writeWrap(m.dst.data, block)
}

// writeWrap copies values into buf at the ring cursor, wrapping at the
// end of the buffer.
func (m *mirror) writeWrap(buf, values []float64) {
	m.cursor = (m.cursor + len(values)) % len(buf)
	a := min(len(values), m.cursor)
	b := min(len(values)-a, len(buf)-m.cursor)
	copy(buf[m.cursor-a:m.cursor], values[len(values)-a:])
	copy(buf[len(buf)-b:], values[len(values)-a-b:])
}
