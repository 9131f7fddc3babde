// Package streamerr defines the error taxonomy shared across components:
// Config errors abort the process during CLI parsing; Gpu errors abort
// the process only at startup (GPU context creation) and drop the
// session everywhere else; Encoder/Io/Protocol errors are always
// per-session once a client has attached.
package streamerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the orchestrator's drop-vs-exit decision.
type Kind int

const (
	// Config covers unparseable CLI arguments, unknown channel names, or
	// unsupported sample rates. Fatal at startup.
	Config Kind = iota
	// Gpu covers shader compile/link failures, dmabuf import rejection,
	// incomplete framebuffers, or missing extensions.
	Gpu
	// Encoder covers VA operation failures, unsupported profile/feature
	// combinations, or undersized coded buffers.
	Encoder
	// Io covers short/failed reads or writes on any fd.
	Io
	// Protocol covers malformed UHID record framing.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Gpu:
		return "gpu"
	case Encoder:
		return "encoder"
	case Io:
		return "io"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a classified, wrapped error carrying the component that raised
// it, mirroring the (component name + cause) logging contract.
type Error struct {
	Kind      Kind
	Component string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, component string, err error) *Error {
	return &Error{Kind: kind, Component: component, Err: err}
}

// Newf builds a classified error from a format string.
func Newf(kind Kind, component, format string, args ...any) *Error {
	return &Error{Kind: kind, Component: component, Err: fmt.Errorf(format, args...)}
}

// IsPipe reports whether err represents EPIPE on the client fd, treated
// as a clean per-session termination rather than a logged failure.
func IsPipe(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return errors.Is(se.Err, ErrBrokenPipe)
	}
	return errors.Is(err, ErrBrokenPipe)
}

// ErrBrokenPipe is the sentinel wrapped by Io errors produced on EPIPE.
var ErrBrokenPipe = errors.New("broken pipe")
