package wayland

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/deskstream/internal/gpu"
)

type fakeDisplay struct {
	fd           int
	pending      []CaptureEvent
	requestCalls int
	closeCalled  bool
}

func (f *fakeDisplay) Fd() int { return f.fd }

func (f *fakeDisplay) Dispatch(deliver func(CaptureEvent)) error {
	for _, ev := range f.pending {
		deliver(ev)
	}
	f.pending = nil
	return nil
}

func (f *fakeDisplay) RequestCapture() error {
	f.requestCalls++
	return nil
}

func (f *fakeDisplay) Close() error {
	f.closeCalled = true
	return nil
}

type fakePortal struct{ display *fakeDisplay }

func (p *fakePortal) CreateSession() (Display, error) { return p.display, nil }

type noopGPUDriver struct{}

func (noopGPUDriver) CompilePrograms(gpu.Matrix3, gpu.Ranges) error            { return nil }
func (noopGPUDriver) ImportImage(w, h, fourcc uint32, planes []gpu.Plane) (any, error) {
	return "h", nil
}
func (noopGPUDriver) ReleaseImage(any) error                                   { return nil }
func (noopGPUDriver) DrawLuma(any, any, uint32, uint32) error                  { return nil }
func (noopGPUDriver) DrawChroma(any, any, [4][2]float32, uint32, uint32) error { return nil }
func (noopGPUDriver) Fence() error                                             { return nil }
func (noopGPUDriver) Close() error                                             { return nil }

func TestReadyEventDeliversFrameAndResubmits(t *testing.T) {
	disp := &fakeDisplay{fd: 99}
	portal := &fakePortal{display: disp}
	gpuCtx, err := gpu.NewContext(noopGPUDriver{}, gpu.ItuRec601, gpu.NarrowRange)
	require.NoError(t, err)

	delivered := 0
	src, err := New(portal, gpuCtx, func(*gpu.Image) { delivered++ })
	require.NoError(t, err)
	require.Equal(t, 1, disp.requestCalls) // initial request at New()

	disp.pending = []CaptureEvent{{Ready: &ReadyEvent{Width: 1920, Height: 1080}}}
	require.NoError(t, src.ProcessEvents())
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, disp.requestCalls)
}

func TestTemporaryCancelResubmits(t *testing.T) {
	disp := &fakeDisplay{fd: 99}
	portal := &fakePortal{display: disp}
	gpuCtx, err := gpu.NewContext(noopGPUDriver{}, gpu.ItuRec601, gpu.NarrowRange)
	require.NoError(t, err)

	src, err := New(portal, gpuCtx, func(*gpu.Image) {})
	require.NoError(t, err)

	temp := CancelTemporary
	disp.pending = []CaptureEvent{{Cancel: &temp}}
	require.NoError(t, src.ProcessEvents())
	assert.Equal(t, 2, disp.requestCalls)
}

func TestPermanentCancelFailsSession(t *testing.T) {
	disp := &fakeDisplay{fd: 99}
	portal := &fakePortal{display: disp}
	gpuCtx, err := gpu.NewContext(noopGPUDriver{}, gpu.ItuRec601, gpu.NarrowRange)
	require.NoError(t, err)

	src, err := New(portal, gpuCtx, func(*gpu.Image) {})
	require.NoError(t, err)

	perm := CancelPermanent
	disp.pending = []CaptureEvent{{Cancel: &perm}}
	require.Error(t, src.ProcessEvents())
}
