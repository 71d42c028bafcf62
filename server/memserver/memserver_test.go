package memserver

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/welle/oscope/server"
)

func TestBufferRoundtrip(t *testing.T) {
	srv := New(Config{})

	buf, err := srv.AllocBuffer(64)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	if buf.Size() != 64 {
		t.Fatalf("size = %d, want 64", buf.Size())
	}

	src := make([]float64, 64)
	for i := range src {
		src[i] = float64(i)
	}
	if err := srv.WriteBuffer(buf, src); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	dst := make([]float64, 64)
	if err := srv.ReadBuffer(buf, dst); err != nil {
		t.Fatalf("ReadBuffer: %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d] = %f, want %f", i, dst[i], src[i])
		}
	}
}

func TestReadFreedBuffer(t *testing.T) {
	srv := New(Config{})

	buf, err := srv.AllocBuffer(32)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	if err := srv.FreeBuffer(buf); err != nil {
		t.Fatalf("FreeBuffer: %v", err)
	}

	err = srv.ReadBuffer(buf, make([]float64, 32))
	if !errors.Is(err, server.ErrBufferGone) {
		t.Fatalf("err = %v, want ErrBufferGone", err)
	}
}

func TestDisconnectedServer(t *testing.T) {
	srv := New(Config{})

	buf, err := srv.AllocBuffer(32)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}

	srv.Disconnect()

	if srv.Connected() {
		t.Fatal("server connected after Disconnect")
	}
	if _, err := srv.AllocBuffer(32); !errors.Is(err, server.ErrNotConnected) {
		t.Fatalf("alloc err = %v, want ErrNotConnected", err)
	}
	if err := srv.ReadBuffer(buf, make([]float64, 32)); !errors.Is(err, server.ErrBufferGone) {
		t.Fatalf("read err = %v, want ErrBufferGone", err)
	}

	srv.Reconnect()

	if err := srv.ReadBuffer(buf, make([]float64, 32)); err != nil {
		t.Fatalf("read after reconnect: %v", err)
	}
}

func TestExternalServer(t *testing.T) {
	srv := New(Config{External: true})
	if srv.InProcess() {
		t.Fatal("external server reported in-process")
	}
}

func TestLookupBus(t *testing.T) {
	srv := New(Config{})
	srv.AddBus("a", server.AudioRate, nil)

	if _, err := srv.LookupBus("a"); err != nil {
		t.Fatalf("LookupBus(a): %v", err)
	}
	if _, err := srv.LookupBus("missing"); err == nil {
		t.Fatal("LookupBus found a missing bus")
	}
}

func TestSignalMirrorWrites(t *testing.T) {
	srv := New(Config{SampleRate: 48000, BlockSize: 64})

	bus := srv.AddBus("flat", server.AudioRate, nil)
	bus.Set(0.25)

	buf, err := srv.AllocBuffer(256)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	group, err := srv.NewGroup()
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	m, err := srv.StartMirror(group, server.MirrorSignal, bus, buf)
	if err != nil {
		t.Fatalf("StartMirror: %v", err)
	}
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	dst := make([]float64, 256)
	for {
		if err := srv.ReadBuffer(buf, dst); err != nil {
			t.Fatalf("ReadBuffer: %v", err)
		}

		full := true
		for _, v := range dst {
			if v != 0.25 {
				full = false
				break
			}
		}
		if full {
			return
		}

		select {
		case <-deadline:
			t.Fatal("mirror never filled the capture buffer")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSpectrumMirrorWrites(t *testing.T) {
	srv := New(Config{SampleRate: 48000, BlockSize: 64})

	bus := srv.AddBus("dc", server.AudioRate, nil)
	bus.Set(0.5)

	buf, err := srv.AllocBuffer(256)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	group, err := srv.NewGroup()
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	m, err := srv.StartMirror(group, server.MirrorSpectrum, bus, buf)
	if err != nil {
		t.Fatalf("StartMirror: %v", err)
	}
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	dst := make([]float64, 256)
	for {
		if err := srv.ReadBuffer(buf, dst); err != nil {
			t.Fatalf("ReadBuffer: %v", err)
		}

		// A DC signal concentrates its energy in bin zero.
		if dst[0] > 1 && dst[0] > dst[10] {
			return
		}

		select {
		case <-deadline:
			t.Fatal("spectrum mirror never produced magnitudes")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMirrorStopAfterDisconnect(t *testing.T) {
	srv := New(Config{})

	bus := srv.AddBus("a", server.AudioRate, nil)
	buf, err := srv.AllocBuffer(128)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	group, err := srv.NewGroup()
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	m, err := srv.StartMirror(group, server.MirrorSignal, bus, buf)
	if err != nil {
		t.Fatalf("StartMirror: %v", err)
	}

	srv.Disconnect()

	if err := m.Stop(); !errors.Is(err, server.ErrNotConnected) {
		t.Fatalf("stop err = %v, want ErrNotConnected", err)
	}
}

func TestMirrorRejectsDeadBuffer(t *testing.T) {
	srv := New(Config{})

	bus := srv.AddBus("a", server.AudioRate, nil)
	buf, err := srv.AllocBuffer(128)
	if err != nil {
		t.Fatalf("AllocBuffer: %v", err)
	}
	group, err := srv.NewGroup()
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}

	if err := srv.FreeBuffer(buf); err != nil {
		t.Fatalf("FreeBuffer: %v", err)
	}

	if _, err := srv.StartMirror(group, server.MirrorSignal, bus, buf); !errors.Is(err, server.ErrBufferGone) {
		t.Fatalf("err = %v, want ErrBufferGone", err)
	}
}
