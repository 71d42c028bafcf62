// Package memserver is an in-process implementation of server.Client.
// Buses are backed by generator functions or externally set values,
// buffers by plain slices, and mirror processes by goroutines that
// write into their target buffer on a fixed block cadence.
package memserver

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/welle/oscope/server"
)

// Generator produces one sample for a given time in seconds.
type Generator func(t float64) float64

// Config holds the tunables of the in-process server.
type Config struct {
	SampleRate float64 // sample clock for audio-rate mirrors
	BlockSize  int     // samples written per mirror wakeup
	External   bool    // report the server as out-of-process
}

// Server implements server.Client entirely in memory.
type Server struct {
	cfg Config

	mu        sync.Mutex
	connected bool
	buses     map[string]*Bus
	nextID    int
}

// New returns a connected in-process server.
func New(cfg Config) *Server {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 64
	}

	return &Server{
		cfg:       cfg,
		connected: true,
		buses:     make(map[string]*Bus),
	}
}

// Connected reports whether the server is up.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// InProcess reports whether buffers can be polled directly.
func (s *Server) InProcess() bool {
	return !s.cfg.External
}

// Disconnect simulates the server going away. All running mirrors are
// stopped and every buffer stops being live until Reconnect.
func (s *Server) Disconnect() {
	s.mu.Lock()
	s.connected = false
	buses := make([]*Bus, 0, len(s.buses))
	for _, b := range s.buses {
		buses = append(buses, b)
	}
	s.mu.Unlock()

	for _, b := range buses {
		b.stopMirrors()
	}
}

// Reconnect simulates a rebuilt server. Buses and buffers survive, but
// mirrors stopped by Disconnect stay gone until restarted.
func (s *Server) Reconnect() {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
}

// AddBus registers a named bus fed by gen. Control-rate buses may pass
// a nil generator and drive the value with Bus.Set instead.
func (s *Server) AddBus(name string, rate server.Rate, gen Generator) *Bus {
	b := &Bus{srv: s, name: name, rate: rate, gen: gen}

	s.mu.Lock()
	s.buses[name] = b
	s.mu.Unlock()

	return b
}

// LookupBus finds a bus by name.
func (s *Server) LookupBus(name string) (*Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buses[name]
	if !ok {
		return nil, errors.Errorf("bus %q not found; check list-signals", name)
	}
	return b, nil
}

// BusNames returns the registered bus names.
func (s *Server) BusNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.buses))
	for name := range s.buses {
		out = append(out, name)
	}
	return out
}

// AllocBuffer allocates an in-memory buffer.
func (s *Server) AllocBuffer(size int) (server.Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid buffer size %d", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil, server.ErrNotConnected
	}

	s.nextID++
	return &memBuffer{
		srv:  s,
		id:   s.nextID,
		data: make([]float64, size),
		live: true,
	}, nil
}

// FreeBuffer releases a buffer. Reads of it fail from here on.
func (s *Server) FreeBuffer(buf server.Buffer) error {
	mb, err := s.ownBuffer(buf)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return server.ErrNotConnected
	}
	mb.live = false
	return nil
}

// ReadBuffer copies the buffer's current content into dst.
func (s *Server) ReadBuffer(buf server.Buffer, dst []float64) error {
	mb, err := s.ownBuffer(buf)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || !mb.live {
		return server.ErrBufferGone
	}

	copy(dst, mb.data)
	return nil
}

// WriteBuffer overwrites the buffer's content from src. It exists so
// hosts can scope arbitrary precomputed sample blocks.
func (s *Server) WriteBuffer(buf server.Buffer, src []float64) error {
	mb, err := s.ownBuffer(buf)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || !mb.live {
		return server.ErrBufferGone
	}

	copy(mb.data, src)
	return nil
}

// NewGroup creates a grouping node for mirrors.
func (s *Server) NewGroup() (server.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil, server.ErrNotConnected
	}

	s.nextID++
	return &memGroup{id: s.nextID}, nil
}

func (s *Server) ownBuffer(buf server.Buffer) (*memBuffer, error) {
	mb, ok := buf.(*memBuffer)
	if !ok || mb.srv != s {
		return nil, errors.Errorf("foreign buffer handle %v", buf)
	}
	return mb, nil
}

type memBuffer struct {
	srv  *Server
	id   int
	data []float64
	live bool // guarded by srv.mu
}

func (b *memBuffer) Size() int      { return len(b.data) }
func (b *memBuffer) String() string { return fmt.Sprintf("buf:%d", b.id) }

type memGroup struct {
	id int
}

func (g *memGroup) String() string { return fmt.Sprintf("group:%d", g.id) }

// Bus is a named in-memory signal channel.
type Bus struct {
	srv  *Server
	name string
	rate server.Rate

	mu      sync.Mutex
	gen     Generator
	value   float64
	mirrors []*mirror
}

// Rate returns the bus signal rate.
func (b *Bus) Rate() server.Rate { return b.rate }

func (b *Bus) String() string { return b.name }

// Set drives the bus with a constant value, replacing any generator.
func (b *Bus) Set(v float64) {
	b.mu.Lock()
	b.gen = nil
	b.value = v
	b.mu.Unlock()
}

func (b *Bus) sample(t float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gen != nil {
		return b.gen(t)
	}
	return b.value
}

func (b *Bus) addMirror(m *mirror) {
	b.mu.Lock()
	b.mirrors = append(b.mirrors, m)
	b.mu.Unlock()
}

func (b *Bus) dropMirror(m *mirror) {
	b.mu.Lock()
	for i, cur := range b.mirrors {
		if cur == m {
			b.mirrors = append(b.mirrors[:i], b.mirrors[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
}

func (b *Bus) stopMirrors() {
	b.mu.Lock()
	mirrors := b.mirrors
	b.mirrors = nil
	b.mu.Unlock()

	for _, m := range mirrors {
		m.halt()
	}
}
