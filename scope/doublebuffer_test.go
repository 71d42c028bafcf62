package scope

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDoubleBufferNeutralInit(t *testing.T) {
	db := NewDoubleBuffer(40, 25)

	frame := db.Snapshot(nil)
	if len(frame) != 40 {
		t.Fatalf("frame length = %d, want 40", len(frame))
	}
	for i, v := range frame {
		if v != 25 {
			t.Fatalf("frame[%d] = %d, want 25", i, v)
		}
	}
}

func TestDoubleBufferPublish(t *testing.T) {
	db := NewDoubleBuffer(8, 0)

	for tick := 1; tick <= 3; tick++ {
		back := db.Back()
		for i := range back {
			back[i] = tick
		}
		db.Publish()

		frame := db.Snapshot(nil)
		for i, v := range frame {
			if v != tick {
				t.Fatalf("tick %d: frame[%d] = %d", tick, i, v)
			}
		}
	}
}

func TestDoubleBufferReset(t *testing.T) {
	db := NewDoubleBuffer(16, 0)

	back := db.Back()
	for i := range back {
		back[i] = 99
	}
	db.Publish()

	db.Reset(50)

	// Both slots must read flat after a reset.
	for round := 0; round < 2; round++ {
		frame := db.Snapshot(nil)
		for i, v := range frame {
			if v != 50 {
				t.Fatalf("round %d: frame[%d] = %d, want 50", round, i, v)
			}
		}
		db.Publish()
	}
}

// TestDoubleBufferAtomicSwap spawns acquisition ticks against
// concurrent readers and asserts every snapshot equals a single tick's
// full output, never a mix of two.
func TestDoubleBufferAtomicSwap(t *testing.T) {
	const (
		width   = 128
		ticks   = 5000
		readers = 4
	)

	db := NewDoubleBuffer(width, 0)

	var done atomic.Bool
	var wg sync.WaitGroup

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			frame := make([]int, 0, width)
			for !done.Load() {
				frame = db.Snapshot(frame)
				first := frame[0]
				for i, v := range frame {
					if v != first {
						t.Errorf("torn frame: [0]=%d [%d]=%d", first, i, v)
						return
					}
				}
			}
		}()
	}

	for tick := 1; tick <= ticks; tick++ {
		back := db.Back()
		for i := range back {
			back[i] = tick
		}
		db.Publish()
	}

	done.Store(true)
	wg.Wait()
}
