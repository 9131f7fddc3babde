package kms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/zsiec/deskstream/internal/gpu"
)

type fakeCard struct {
	opened      []string
	fb          Framebuffer
	exportCalls []uint32
	closeCalled bool
}

func (f *fakeCard) Open(candidates []string) error {
	f.opened = candidates
	return nil
}

func (f *fakeCard) FirstCRTCWithFramebuffer() (Framebuffer, error) {
	return f.fb, nil
}

func (f *fakeCard) ExportPlaneFd(handle uint32) (int, error) {
	f.exportCalls = append(f.exportCalls, handle)
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return 0, err
	}
	unix.Close(fds[1])
	return fds[0], nil
}

func (f *fakeCard) Close() error {
	f.closeCalled = true
	return nil
}

type fakeGPUDriver struct{}

func (fakeGPUDriver) CompilePrograms(gpu.Matrix3, gpu.Ranges) error { return nil }
func (fakeGPUDriver) ImportImage(w, h, fourcc uint32, planes []gpu.Plane) (any, error) {
	return "handle", nil
}
func (fakeGPUDriver) ReleaseImage(any) error                                   { return nil }
func (fakeGPUDriver) DrawLuma(any, any, uint32, uint32) error                  { return nil }
func (fakeGPUDriver) DrawChroma(any, any, [4][2]float32, uint32, uint32) error { return nil }
func (fakeGPUDriver) Fence() error                                             { return nil }
func (fakeGPUDriver) Close() error                                             { return nil }

func TestProcessEventsDeliversOneFramePerTick(t *testing.T) {
	card := &fakeCard{fb: Framebuffer{
		Width: 1920, Height: 1080, PixelFormat: 0x3231564e, // NV12
		Planes: []FramebufferPlane{{Handle: 7, Pitch: 1920, Offset: 0}},
	}}

	gpuCtx, err := gpu.NewContext(fakeGPUDriver{}, gpu.ItuRec709, gpu.FullRange)
	require.NoError(t, err)

	delivered := 0
	src, err := New(card, gpuCtx, func(frame *gpu.Image) {
		delivered++
		assert.Equal(t, uint32(1920), frame.Width)
	})
	require.NoError(t, err)
	defer src.Close()

	// Wait for the first timer expiration so the tick is pending.
	pfd := []unix.PollFd{{Fd: int32(src.EventsFD()), Events: unix.POLLIN}}
	_, err = unix.Poll(pfd, 1000)
	require.NoError(t, err)

	require.NoError(t, src.ProcessEvents())
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []uint32{7}, card.exportCalls)
}

func TestOpenTriesFixedCandidateList(t *testing.T) {
	card := &fakeCard{}
	gpuCtx, err := gpu.NewContext(fakeGPUDriver{}, gpu.ItuRec601, gpu.NarrowRange)
	require.NoError(t, err)

	src, err := New(card, gpuCtx, func(*gpu.Image) {})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, renderNodeCandidates, card.opened)
}
