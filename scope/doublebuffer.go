// Package scope is the live scope engine: per-scope double-buffered
// frame storage, the registry of live instances, the periodic refresh
// scheduler and the lifecycle manager tying scopes to their
// server-side acquisition processes.
package scope

import (
	"sync"
	"sync/atomic"
)

type dbFrame struct {
	pts []int
	mu  sync.Mutex
}

// DoubleBuffer holds two display-width frames. The acquisition worker
// fills the back frame while readers snapshot the front one; Publish
// swaps the roles with a single atomic pointer store, so a reader
// always sees one tick's complete output.
type DoubleBuffer struct {
	frames [2]dbFrame
	back   *dbFrame
	front  atomic.Pointer[dbFrame]
}

// NewDoubleBuffer returns a buffer of two width-sized frames, both
// filled with the neutral value.
func NewDoubleBuffer(width, neutral int) *DoubleBuffer {
	db := &DoubleBuffer{}
	for i := range db.frames {
		db.frames[i].pts = make([]int, width)
		fill(db.frames[i].pts, neutral)
	}

	db.back = &db.frames[0]
	db.back.mu.Lock()
	db.front.Store(&db.frames[1])

	return db
}

// Back returns the writable frame. Only the acquisition worker may
// touch it, and only between Publish calls.
func (db *DoubleBuffer) Back() []int {
	return db.back.pts
}

// Publish swaps the front and back frames. It waits for readers still
// holding the outgoing front before handing it to the writer.
func (db *DoubleBuffer) Publish() {
	db.back.mu.Unlock()
	db.back = db.front.Swap(db.back)
	db.back.mu.Lock()
}

// Snapshot copies the current front frame into dst and returns it.
// The copy is taken under the frame lock, so it is always a single
// published frame, never a mix of two ticks.
func (db *DoubleBuffer) Snapshot(dst []int) []int {
	f := db.front.Load()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append(dst[:0], f.pts...)
}

// Reset publishes two frames of the neutral value so both slots read
// flat. It must not run concurrently with an acquisition worker.
func (db *DoubleBuffer) Reset(neutral int) {
	fill(db.back.pts, neutral)
	db.Publish()
	fill(db.back.pts, neutral)
	db.Publish()
}

func fill(pts []int, v int) {
	for i := range pts {
		pts[i] = v
	}
}
