package server

import (
	"testing"

	"github.com/pkg/errors"
)

type checkClient struct {
	Client
	connected bool
	inProcess bool
}

func (c *checkClient) Connected() bool { return c.connected }
func (c *checkClient) InProcess() bool { return c.inProcess }

func TestCheckInProcess(t *testing.T) {
	err := CheckInProcess(&checkClient{connected: false})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}

	err = CheckInProcess(&checkClient{connected: true, inProcess: false})
	if !errors.Is(err, ErrNotInProcess) {
		t.Fatalf("err = %v, want ErrNotInProcess", err)
	}

	if err := CheckInProcess(&checkClient{connected: true, inProcess: true}); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestNotifierFireOrder(t *testing.T) {
	n := &Notifier{}

	var got []string
	n.OnServerReady(func() { got = append(got, "ready-1") })
	n.OnServerReady(func() { got = append(got, "ready-2") })
	n.OnDefsLoaded(func() { got = append(got, "defs") })
	n.OnShutdown(func() { got = append(got, "shutdown") })

	n.ServerReady()
	n.DefsLoaded()
	n.Shutdown()

	want := []string{"ready-1", "ready-2", "defs", "shutdown"}
	if len(got) != len(want) {
		t.Fatalf("fired %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fired %v, want %v", got, want)
		}
	}
}

func TestNotifierRefire(t *testing.T) {
	n := &Notifier{}

	count := 0
	n.OnServerReady(func() { count++ })

	n.ServerReady()
	n.ServerReady()

	if count != 2 {
		t.Fatalf("callback ran %d times, want 2", count)
	}
}
