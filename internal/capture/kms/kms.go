// Package kms implements the DRM/KMS capture backend: it
// opens a render node, finds the CRTC currently scanning out the desktop,
// and arms a 1/60s interval timer. Each expiration reads the CRTC's
// current framebuffer, exports its planes as PRIME dmabuf fds, and
// delivers a transient GPU image to the orchestrator.
//
// The actual DRM ioctl surface (GETRESOURCES/GETCRTC/PRIME_HANDLE_TO_FD)
// is modeled behind the Card interface so the tick-driven frame-assembly
// logic is testable without a real GPU.
package kms

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/zsiec/deskstream/internal/capture"
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/streamerr"
)

// renderNodeCandidates is the fixed list of driver names tried in order.
var renderNodeCandidates = []string{"i915", "amdgpu", "nouveau", "vc4", "vmwgfx"}

// FramebufferPlane is one plane handle of a CRTC's current framebuffer,
// as reported by the driver.
type FramebufferPlane struct {
	Handle   uint32
	Pitch    uint32
	Offset   uint32
	Modifier uint64
}

// Framebuffer describes a CRTC's scanned-out framebuffer at the moment of
// a query.
type Framebuffer struct {
	Width, Height uint32
	PixelFormat   uint32
	Planes        []FramebufferPlane
}

// Card is the DRM render-node boundary.
type Card interface {
	// Open tries each candidate driver name in order and opens the first
	// render node that succeeds.
	Open(candidates []string) error
	// FirstCRTCWithFramebuffer returns the current framebuffer of the
	// first enumerated CRTC that has one.
	FirstCRTCWithFramebuffer() (Framebuffer, error)
	// ExportPlaneFd exports handle as a PRIME dmabuf fd.
	ExportPlaneFd(handle uint32) (int, error)
	Close() error
}

// Source is the KMS capture backend.
type Source struct {
	card    Card
	gpuCtx  *gpu.Context
	onFrame capture.OnFrameReady
	timerFd int
}

const tickInterval = time.Second / 60

// New opens a render node from the fixed candidate list and arms the
// interval timer.
func New(card Card, gpuCtx *gpu.Context, onFrame capture.OnFrameReady) (*Source, error) {
	if err := card.Open(renderNodeCandidates); err != nil {
		return nil, streamerr.New(streamerr.Gpu, "capture/kms", err)
	}

	timerFd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, streamerr.New(streamerr.Io, "capture/kms", err)
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(tickInterval.Nanoseconds()),
		Value:    unix.NsecToTimespec(tickInterval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(timerFd, 0, &spec, nil); err != nil {
		unix.Close(timerFd)
		return nil, streamerr.New(streamerr.Io, "capture/kms", err)
	}

	return &Source{card: card, gpuCtx: gpuCtx, onFrame: onFrame, timerFd: timerFd}, nil
}

// EventsFD returns the timerfd.
func (s *Source) EventsFD() int { return s.timerFd }

// ProcessEvents reads the timer expiration count, then captures and
// delivers exactly one frame (extra expirations are coalesced, matching a
// timerfd read's semantics). If no expiration is pending (EAGAIN), it
// returns nil without capturing.
func (s *Source) ProcessEvents() error {
	var buf [8]byte
	if _, err := unix.Read(s.timerFd, buf[:]); err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		return streamerr.New(streamerr.Io, "capture/kms", err)
	}

	fb, err := s.card.FirstCRTCWithFramebuffer()
	if err != nil {
		return streamerr.New(streamerr.Gpu, "capture/kms", err)
	}

	planes := make([]gpu.Plane, 0, len(fb.Planes))
	for _, p := range fb.Planes {
		fd, err := s.card.ExportPlaneFd(p.Handle)
		if err != nil {
			return streamerr.New(streamerr.Gpu, "capture/kms", err)
		}
		planes = append(planes, gpu.NewPlane(fd, p.Pitch, p.Offset, p.Modifier))
	}

	img, err := s.gpuCtx.ImportDmabufImage(fb.Width, fb.Height, fb.PixelFormat, planes)
	if err != nil {
		for i := range planes {
			planes[i].Close()
		}
		return streamerr.New(streamerr.Gpu, "capture/kms", err)
	}

	s.onFrame(img)
	return s.gpuCtx.CloseImage(img)
}

// Close releases the timerfd and the render node.
func (s *Source) Close() error {
	unix.Close(s.timerFd)
	return s.card.Close()
}
