// Package capture defines the common interface the two capture backends
// (KMS and Wayland, in the kms and wayland subpackages) implement: obtain
// the compositor's framebuffer as dmabuf planes once per tick and deliver
// it to the orchestrator as a transient GPU image.
package capture

import "github.com/zsiec/deskstream/internal/gpu"

// OnFrameReady is invoked once per captured tick with a transient GPU
// image. The image's lifetime is exactly this call: the
// receiver must convert and release before returning.
type OnFrameReady func(frame *gpu.Image)

// Source is the common capture-backend contract.
type Source interface {
	// EventsFD returns the fd the reactor should watch for this backend's
	// readiness (a timerfd for KMS, the Wayland display connection fd for
	// Wayland).
	EventsFD() int

	// ProcessEvents handles one batch of pending events, invoking
	// OnFrameReady zero or more times. A returned error is fatal to the
	// current client session, not the process.
	ProcessEvents() error

	// Close releases backend resources and joins any owned background
	// thread.
	Close() error
}
