package scope

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/welle/oscope/dsp"
	"github.com/welle/oscope/graphic"
	"github.com/welle/oscope/server"
)

// DefaultCaptureSize is the capture buffer length used when the config
// leaves it zero. It must be a power of two.
const DefaultCaptureSize = 2048

// Config wires an Engine to its collaborators.
type Config struct {
	// Client is the audio engine connection. Required.
	Client server.Client

	// Events is the process-lifecycle notifier the engine subscribes
	// to. Optional; without it the host drives the engine directly.
	Events *server.Notifier

	// FPS is the refresh rate of the shared scheduler.
	FPS int

	// CaptureSize is the length of allocated capture buffers. Must be
	// a power of two.
	CaptureSize int

	// YPad is the vertical padding of the trace area.
	YPad int
}

// Engine owns the scope registry, the refresh scheduler and the
// server-side acquisition objects. All lifecycle operations serialize
// on its mutex; the scheduler iterates registry snapshots concurrently.
type Engine struct {
	client      server.Client
	captureSize int
	ypad        int

	reg   *registry
	sched *scheduler

	mu     sync.Mutex
	group  server.Group
	nextID int
}

// NewEngine builds an engine and, when a notifier is given, subscribes
// its lifecycle hooks: server-ready recreates the acquisition group,
// defs-loaded restarts bus scopes, shutdown tears everything down.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Client == nil {
		return nil, errors.New("scope: nil server client")
	}

	if cfg.CaptureSize == 0 {
		cfg.CaptureSize = DefaultCaptureSize
	}
	if !isPowerOfTwo(cfg.CaptureSize) {
		return nil, errors.Errorf("scope: capture size %d is not a power of two", cfg.CaptureSize)
	}

	if cfg.YPad == 0 {
		cfg.YPad = graphic.YPad
	}

	e := &Engine{
		client:      cfg.Client,
		captureSize: cfg.CaptureSize,
		ypad:        cfg.YPad,
		reg:         newRegistry(),
	}
	e.sched = newScheduler(cfg.FPS, e.tickAll)

	if cfg.Events != nil {
		cfg.Events.OnServerReady(e.serverReady)
		cfg.Events.OnDefsLoaded(func() {
			if err := e.RestartBusScopes(); err != nil {
				log.Printf("oscope: restart bus scopes: %v", err)
			}
		})
		cfg.Events.OnShutdown(e.Shutdown)
	}

	return e, nil
}

// CreateOptions describes one scope to create.
type CreateOptions struct {
	Kind        Kind
	Bus         server.Bus    // bus kinds
	Buffer      server.Buffer // raw-buffer kind
	Width       int
	Height      int
	PinnedOnTop bool
	Surface     Surface        // optional repaint/zoom collaborator
	Styles      graphic.Styles // zero value takes the defaults
}

// CreateScope builds the capture pipeline for one scope, registers the
// instance and ensures the scheduler is running. It fails before any
// state mutation if the server is missing or not in-process-capable,
// and never leaves a partial scope registered.
func (e *Engine) CreateScope(opts CreateOptions) (*Instance, error) {
	if err := server.CheckInProcess(e.client); err != nil {
		return nil, errors.Wrap(err, "create scope")
	}

	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	capture := opts.Buffer
	if opts.Kind.mirrored() {
		var err error
		if capture, err = e.client.AllocBuffer(e.captureSize); err != nil {
			return nil, errors.Wrap(err, "alloc capture buffer")
		}
	}

	var mirror server.Mirror
	if opts.Kind.mirrored() {
		group, err := e.ensureGroup()
		if err != nil {
			e.freeQuiet(capture)
			return nil, errors.Wrap(err, "create acquisition group")
		}

		if mirror, err = e.client.StartMirror(group, opts.Kind.mirrorKind(), opts.Bus, capture); err != nil {
			e.freeQuiet(capture)
			return nil, errors.Wrapf(err, "start %s acquisition", opts.Kind)
		}
	}

	e.nextID++
	inst := &Instance{
		id:      e.nextID,
		kind:    opts.Kind,
		bus:     opts.Bus,
		capture: capture,
		mirror:  mirror,
		width:   opts.Width,
		height:  opts.Height,
		pinned:  opts.PinnedOnTop,
		xs:      xAxis(opts.Width),
		scratch: make([]float64, capture.Size()),
		surface: opts.Surface,
		styles:  opts.Styles,
	}
	inst.db = NewDoubleBuffer(opts.Width, inst.neutral())
	inst.down = dsp.NewDownsampler(dsp.DownsamplerConfig{
		CaptureSize: capture.Size(),
		Width:       opts.Width,
		Height:      opts.Height,
		YPad:        e.ypad,
	})

	e.reg.insert(inst)
	e.sched.start()

	return inst, nil
}

func validateOptions(opts *CreateOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.Errorf("invalid scope size %dx%d", opts.Width, opts.Height)
	}

	if opts.Styles == (graphic.Styles{}) {
		opts.Styles = graphic.DefaultStyles()
	}

	switch opts.Kind {
	case KindAudioBus, KindBusSpectrum:
		if opts.Bus == nil {
			return errors.Errorf("%s scope needs a bus", opts.Kind)
		}
		if opts.Bus.Rate() != server.AudioRate {
			return errors.Errorf("%s scope needs an audio-rate bus, got %s", opts.Kind, opts.Bus)
		}
	case KindControlBus:
		if opts.Bus == nil {
			return errors.Errorf("%s scope needs a bus", opts.Kind)
		}
		if opts.Bus.Rate() != server.ControlRate {
			return errors.Errorf("control-bus scope needs a control-rate bus, got %s", opts.Bus)
		}
	case KindRawBuffer:
		if opts.Buffer == nil {
			return errors.New("raw-buffer scope needs a buffer")
		}
		if !isPowerOfTwo(opts.Buffer.Size()) {
			return errors.Errorf("buffer %s size %d is not a power of two", opts.Buffer, opts.Buffer.Size())
		}
	default:
		return errors.Errorf("unknown scope kind %d", opts.Kind)
	}

	return nil
}

// ScopeAudioBus creates a scope over an audio-rate bus.
func (e *Engine) ScopeAudioBus(bus server.Bus, width, height int, sfc Surface) (*Instance, error) {
	return e.CreateScope(CreateOptions{Kind: KindAudioBus, Bus: bus, Width: width, Height: height, Surface: sfc})
}

// ScopeControlBus creates a scope over a control-rate bus.
func (e *Engine) ScopeControlBus(bus server.Bus, width, height int, sfc Surface) (*Instance, error) {
	return e.CreateScope(CreateOptions{Kind: KindControlBus, Bus: bus, Width: width, Height: height, Surface: sfc})
}

// ScopeBuffer creates a scope polling a server buffer directly.
func (e *Engine) ScopeBuffer(buf server.Buffer, width, height int, sfc Surface) (*Instance, error) {
	return e.CreateScope(CreateOptions{Kind: KindRawBuffer, Buffer: buf, Width: width, Height: height, Surface: sfc})
}

// ScopeBusSpectrum creates a frequency-magnitude scope over a bus.
func (e *Engine) ScopeBusSpectrum(bus server.Bus, width, height int, sfc Surface) (*Instance, error) {
	return e.CreateScope(CreateOptions{Kind: KindBusSpectrum, Bus: bus, Width: width, Height: height, Surface: sfc})
}

// CloseScope removes a scope, releases its capture buffer and
// terminates its acquisition process. Closing an unknown or already
// closed id is a no-op.
func (e *Engine) CloseScope(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked(id)
}

func (e *Engine) closeLocked(id int) {
	inst, ok := e.reg.remove(id)
	if !ok {
		return
	}

	if inst.mirror != nil && e.client.Connected() {
		// A server that has already gone away took the process with
		// it; that failure leaves the desired end state anyway.
		if err := inst.mirror.Stop(); err != nil {
			log.Printf("oscope: scope %d: stop acquisition: %v", id, err)
		}
	}
	inst.mirror = nil

	if inst.kind.mirrored() {
		e.freeQuiet(inst.capture)
	}
}

func (e *Engine) freeQuiet(buf server.Buffer) {
	if buf == nil || !e.client.Connected() {
		return
	}
	if err := e.client.FreeBuffer(buf); err != nil {
		log.Printf("oscope: free buffer %s: %v", buf, err)
	}
}

// Start resumes the refresh scheduler. Starting a running engine is a
// no-op.
func (e *Engine) Start() {
	e.sched.start()
}

// Stop halts the scheduler and resets every registered scope to the
// neutral flat line. Instances stay registered, ready to resume.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.stop()

	for _, inst := range e.reg.snapshot() {
		inst.db.Reset(inst.neutral())
	}
}

// Running reports whether the scheduler is active.
func (e *Engine) Running() bool {
	return e.sched.isRunning()
}

// RestartBusScopes re-creates the acquisition process of every
// bus-kind scope under a fresh group, then resumes the scheduler. It
// recovers scopes across a server restart without recreating windows.
func (e *Engine) RestartBusScopes() error {
	if err := server.CheckInProcess(e.client); err != nil {
		return errors.Wrap(err, "restart bus scopes")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.group = nil
	group, err := e.ensureGroup()
	if err != nil {
		return errors.Wrap(err, "recreate acquisition group")
	}

	for _, inst := range e.reg.snapshot() {
		if !inst.kind.mirrored() {
			continue
		}

		if inst.mirror != nil {
			if err := inst.mirror.Stop(); err != nil {
				log.Printf("oscope: scope %d: stop stale acquisition: %v", inst.id, err)
			}
		}

		mirror, err := e.client.StartMirror(group, inst.kind.mirrorKind(), inst.bus, inst.capture)
		if err != nil {
			// Leave this scope flat rather than failing the rest.
			log.Printf("oscope: scope %d: restart acquisition: %v", inst.id, err)
			inst.mirror = nil
			continue
		}
		inst.mirror = mirror
	}

	e.sched.start()
	return nil
}

// Shutdown stops the scheduler and closes every registered scope.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.stop()

	for _, inst := range e.reg.snapshot() {
		e.closeLocked(inst.id)
	}
}

// Scopes returns the number of registered instances.
func (e *Engine) Scopes() int {
	return e.reg.size()
}

// Lookup finds a registered instance by id.
func (e *Engine) Lookup(id int) (*Instance, bool) {
	return e.reg.lookup(id)
}

// Render produces the draw sequence for one scope, reading the zoom
// slider from its surface. An unknown id draws nothing.
func (e *Engine) Render(id int) []graphic.Op {
	inst, ok := e.reg.lookup(id)
	if !ok {
		return nil
	}

	slider := 50.0
	if inst.surface != nil {
		slider = inst.surface.Zoom()
	}

	frame := inst.db.Snapshot(make([]int, 0, inst.width))
	return graphic.Render(frame, inst.xs, graphic.Zoom(slider), inst.width, inst.height, inst.styles)
}

// serverReady recreates the acquisition group after a server (re)build.
func (e *Engine) serverReady() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.group = nil
	if _, err := e.ensureGroup(); err != nil {
		log.Printf("oscope: create acquisition group: %v", err)
	}
}

func (e *Engine) ensureGroup() (server.Group, error) {
	if e.group != nil {
		return e.group, nil
	}

	group, err := e.client.NewGroup()
	if err != nil {
		return nil, err
	}

	e.group = group
	return group, nil
}

// tickAll runs one scheduler tick over a registry snapshot. A failure
// in one scope is logged and never halts the others.
func (e *Engine) tickAll() {
	for _, inst := range e.reg.snapshot() {
		if err := e.update(inst); err != nil {
			log.Printf("oscope: scope %d: %v", inst.id, err)
		}
	}
}

// update acquires one frame for one scope. A capture buffer that is
// not live this tick is skipped entirely; the previous front frame
// stays published.
func (e *Engine) update(inst *Instance) error {
	if err := e.client.ReadBuffer(inst.capture, inst.scratch); err != nil {
		if errors.Is(err, server.ErrBufferGone) || errors.Is(err, server.ErrNotConnected) {
			return nil
		}
		return errors.Wrap(err, "read capture buffer")
	}

	inst.down.Fill(inst.db.Back(), inst.scratch)
	inst.db.Publish()

	if inst.surface != nil {
		inst.surface.Repaint()
	}
	return nil
}
