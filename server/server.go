// Package server abstracts the audio engine connection that feeds the
// scope engine: bus and buffer handles, buffer reads, and the
// server-side mirror processes that copy bus signal into capture
// buffers.
package server

import (
	"github.com/pkg/errors"
)

// Rate is the signal rate of a bus.
type Rate int

const (
	// AudioRate buses carry full-rate sample data.
	AudioRate Rate = iota
	// ControlRate buses carry one value per control period.
	ControlRate
)

// MirrorKind selects what a mirror process writes into its target
// buffer.
type MirrorKind int

const (
	// MirrorSignal copies the bus signal as-is.
	MirrorSignal MirrorKind = iota
	// MirrorSpectrum writes the frequency-magnitude transform of the
	// bus signal.
	MirrorSpectrum
)

// Sentinel errors shared by all client implementations.
var (
	// ErrNotConnected is returned when the server connection is down.
	ErrNotConnected = errors.New("server not connected")

	// ErrNotInProcess is returned when the server is reachable but not
	// the in-process kind required for shared-buffer access.
	ErrNotInProcess = errors.New("server is not running in-process; shared buffer access unavailable")

	// ErrBufferGone is returned by reads of a buffer that has been
	// freed, or whose host server has gone away.
	ErrBufferGone = errors.New("buffer is not live")
)

// Bus is a handle to a named signal channel on the server.
type Bus interface {
	Rate() Rate
	String() string
}

// Buffer is a handle to a block of server-side sample storage.
type Buffer interface {
	Size() int
	String() string
}

// Group is a handle to a server-side node all mirror processes are
// parented under, so they can be torn down together.
type Group interface {
	String() string
}

// Mirror is a handle to a running server-side process that
// continuously writes into a buffer.
type Mirror interface {
	// Stop terminates the process. Stopping a mirror whose server has
	// already gone away returns an error, but the desired end state
	// (no running process) holds either way.
	Stop() error
}

// Client is a connection to the audio engine.
type Client interface {
	// Connected reports whether the server is reachable.
	Connected() bool

	// InProcess reports whether the server shares the client's address
	// space. Capture buffers can only be polled on in-process servers.
	InProcess() bool

	// AllocBuffer allocates a server-side buffer of the given size.
	AllocBuffer(size int) (Buffer, error)

	// FreeBuffer releases a previously allocated buffer.
	FreeBuffer(buf Buffer) error

	// ReadBuffer copies the buffer's current content into dst. It
	// returns ErrBufferGone if the buffer has been freed or the server
	// has disconnected; dst is untouched on error.
	ReadBuffer(buf Buffer, dst []float64) error

	// NewGroup creates a grouping node for mirror processes.
	NewGroup() (Group, error)

	// StartMirror starts a server-side process, parented under group,
	// that continuously writes bus signal (or its spectrum) into dst.
	StartMirror(group Group, kind MirrorKind, bus Bus, dst Buffer) (Mirror, error)
}

// CheckInProcess verifies the precondition every scope creation
// depends on: a live, in-process-capable server.
func CheckInProcess(c Client) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	if !c.InProcess() {
		return ErrNotInProcess
	}
	return nil
}
