package server

import "sync"

// Notifier is a small process-lifecycle event bus. The scope engine
// subscribes to it at construction; the host application fires the
// events as the server comes and goes.
type Notifier struct {
	mu       sync.Mutex
	ready    []func()
	defsDone []func()
	shutdown []func()
}

// OnServerReady registers fn to run when the server signals readiness.
func (n *Notifier) OnServerReady(fn func()) {
	n.mu.Lock()
	n.ready = append(n.ready, fn)
	n.mu.Unlock()
}

// OnDefsLoaded registers fn to run when synth definitions have been
// (re)loaded and the acquisition group exists again.
func (n *Notifier) OnDefsLoaded(fn func()) {
	n.mu.Lock()
	n.defsDone = append(n.defsDone, fn)
	n.mu.Unlock()
}

// OnShutdown registers fn to run when the host application shuts down.
func (n *Notifier) OnShutdown(fn func()) {
	n.mu.Lock()
	n.shutdown = append(n.shutdown, fn)
	n.mu.Unlock()
}

// ServerReady fires the server-ready callbacks in registration order.
func (n *Notifier) ServerReady() { n.fire(&n.ready) }

// DefsLoaded fires the defs-loaded callbacks in registration order.
func (n *Notifier) DefsLoaded() { n.fire(&n.defsDone) }

// Shutdown fires the shutdown callbacks in registration order.
func (n *Notifier) Shutdown() { n.fire(&n.shutdown) }

func (n *Notifier) fire(list *[]func()) {
	n.mu.Lock()
	fns := make([]func(), len(*list))
	copy(fns, *list)
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
