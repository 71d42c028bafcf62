package scope

import (
	"sync"
	"time"
)

// DefaultFPS is the refresh rate used when the config leaves it zero.
const DefaultFPS = 10

// scheduler is the single periodic worker driving all acquisition
// ticks. Starting it twice is a no-op; the running flag is the guard.
type scheduler struct {
	fps  int
	tick func()

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}
}

func newScheduler(fps int, tick func()) *scheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}

	return &scheduler{
		fps:  fps,
		tick: tick,
	}
}

func (s *scheduler) start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.quit, s.done)
}

func (s *scheduler) stop() {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return
	}

	s.running = false
	quit, done := s.quit, s.done
	s.mu.Unlock()

	close(quit)
	<-done
}

func (s *scheduler) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *scheduler) run(quit, done chan struct{}) {
	defer close(done)

	period := time.Duration(1000/s.fps) * time.Millisecond
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}
