// Package wayland implements the Wayland-compositor capture backend:
// connect to the compositor via an XDG Desktop Portal
// ScreenCast session, bind the dmabuf-export manager, and service the
// asynchronous frame/object/ready/cancel event sequence the protocol
// defines.
//
// The portal session negotiation (over D-Bus) and the Wayland protocol
// dispatch are both external collaborators; this package models their
// contracts as the Display and Portal interfaces.
package wayland

import (
	"github.com/zsiec/deskstream/internal/capture"
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/streamerr"
)

// CancelReason distinguishes a recoverable cancellation from a permanent
// one.
type CancelReason int

const (
	CancelTemporary CancelReason = iota
	CancelResizing
	CancelPermanent
)

// CaptureEvent is one event the Display delivers while dispatching.
type CaptureEvent struct {
	Ready  *ReadyEvent
	Cancel *CancelReason
}

// ReadyEvent carries the captured image's plane descriptors once the
// compositor has finished rendering into them.
type ReadyEvent struct {
	Width, Height uint32
	Fourcc        uint32
	Planes        []gpu.Plane
}

// Display is the bound Wayland connection plus the dmabuf-export capture
// object, wrapping honnef.co/go/libwayland's wl_display in a real
// implementation.
type Display interface {
	// Fd returns the display connection's fd the reactor watches.
	Fd() int
	// Dispatch processes pending messages, invoking deliver for each
	// capture-related event it produces.
	Dispatch(deliver func(CaptureEvent)) error
	// RequestCapture submits a new capture request (called once at
	// startup and again after each completed/cancelled-recoverable
	// frame).
	RequestCapture() error
	Close() error
}

// Portal negotiates the XDG Desktop Portal ScreenCast/RemoteDesktop
// session (over D-Bus, godbus/dbus) that authorizes the capture, in a
// real implementation.
type Portal interface {
	// CreateSession negotiates a ScreenCast session and returns a Display
	// bound to the agreed compositor output.
	CreateSession() (Display, error)
}

// Source is the Wayland capture backend.
type Source struct {
	display Display
	gpuCtx  *gpu.Context
	onFrame capture.OnFrameReady
}

// New negotiates a portal session, binds the output and dmabuf-export
// manager, and submits the first capture request.
func New(portal Portal, gpuCtx *gpu.Context, onFrame capture.OnFrameReady) (*Source, error) {
	display, err := portal.CreateSession()
	if err != nil {
		return nil, streamerr.New(streamerr.Gpu, "capture/wayland", err)
	}
	if err := display.RequestCapture(); err != nil {
		display.Close()
		return nil, streamerr.New(streamerr.Gpu, "capture/wayland", err)
	}
	return &Source{display: display, gpuCtx: gpuCtx, onFrame: onFrame}, nil
}

// EventsFD is the display connection's fd.
func (s *Source) EventsFD() int { return s.display.Fd() }

// ProcessEvents dispatches pending Wayland messages. On ready, it
// constructs the image, invokes the callback, releases it, and submits
// the next capture request. On a recoverable cancel it resubmits; on a
// permanent cancel it fails the session.
func (s *Source) ProcessEvents() error {
	var sessionErr error
	err := s.display.Dispatch(func(ev CaptureEvent) {
		if sessionErr != nil {
			return
		}
		switch {
		case ev.Ready != nil:
			sessionErr = s.handleReady(ev.Ready)
		case ev.Cancel != nil:
			sessionErr = s.handleCancel(*ev.Cancel)
		}
	})
	if err != nil {
		return streamerr.New(streamerr.Gpu, "capture/wayland", err)
	}
	return sessionErr
}

func (s *Source) handleReady(ev *ReadyEvent) error {
	img, err := s.gpuCtx.ImportDmabufImage(ev.Width, ev.Height, ev.Fourcc, ev.Planes)
	if err != nil {
		return streamerr.New(streamerr.Gpu, "capture/wayland", err)
	}
	s.onFrame(img)
	if err := s.gpuCtx.CloseImage(img); err != nil {
		return streamerr.New(streamerr.Gpu, "capture/wayland", err)
	}
	return s.display.RequestCapture()
}

func (s *Source) handleCancel(reason CancelReason) error {
	if reason == CancelPermanent {
		return streamerr.Newf(streamerr.Gpu, "capture/wayland", "capture session permanently cancelled")
	}
	return s.display.RequestCapture()
}

// Close releases the display connection.
func (s *Source) Close() error {
	return s.display.Close()
}
