package scope

import "sync"

// registry is the shared map of live scope instances. Structural
// mutations and iteration snapshots serialize on one mutex, so an
// iteration in progress always sees a consistent membership.
type registry struct {
	mu     sync.RWMutex
	scopes map[int]*Instance
}

func newRegistry() *registry {
	return &registry{scopes: make(map[int]*Instance)}
}

func (r *registry) insert(inst *Instance) {
	r.mu.Lock()
	r.scopes[inst.id] = inst
	r.mu.Unlock()
}

func (r *registry) lookup(id int) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.scopes[id]
	return inst, ok
}

func (r *registry) remove(id int) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.scopes[id]
	if ok {
		delete(r.scopes, id)
	}
	return inst, ok
}

// snapshot returns the live instances at one instant, in no particular
// order. The scheduler iterates the snapshot so concurrent inserts and
// removes never tear a tick.
func (r *registry) snapshot() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Instance, 0, len(r.scopes))
	for _, inst := range r.scopes {
		out = append(out, inst)
	}
	return out
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scopes)
}
