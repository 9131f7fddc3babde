package platform

import (
	"errors"
	"os"

	"github.com/zsiec/deskstream/internal/codec"
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/hevc"
)

// ErrNotImplemented is returned by every stub below. The EGL/GLES
// context, the VA-API session, and the KMS/Wayland client library
// bindings themselves are external collaborators; this package holds only
// stubs satisfying their Go-level contracts (gpu.Driver, codec.Driver,
// kms.Card, audio.Capture), which are defined in those packages.
// A production build substitutes these stubs with cgo bindings against
// libEGL/libGLESv2, libva, and libdrm/libwayland-client respectively.
var ErrNotImplemented = errors.New("platform: requires a cgo-backed driver build")

// RenderNodePath is the device this system's VA/GPU stack opens first.
const RenderNodePath = "/dev/dri/renderD128"

// GLESDriver is the gpu.Driver stub. A real implementation owns an EGL
// display, a GLES 3.1 context, and the compiled luma/chroma programs.
type GLESDriver struct {
	renderNode *os.File
}

// OpenGLESDriver opens the render node (the one real, non-cgo step this
// stub performs) and defers context creation to a real implementation.
func OpenGLESDriver(path string) (*GLESDriver, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &GLESDriver{renderNode: f}, nil
}

func (d *GLESDriver) CompilePrograms(gpu.Matrix3, gpu.Ranges) error { return ErrNotImplemented }
func (d *GLESDriver) ImportImage(uint32, uint32, uint32, []gpu.Plane) (any, error) {
	return nil, ErrNotImplemented
}
func (d *GLESDriver) ReleaseImage(any) error { return ErrNotImplemented }
func (d *GLESDriver) DrawLuma(any, any, uint32, uint32) error { return ErrNotImplemented }
func (d *GLESDriver) DrawChroma(any, any, [4][2]float32, uint32, uint32) error {
	return ErrNotImplemented
}
func (d *GLESDriver) Fence() error { return ErrNotImplemented }
func (d *GLESDriver) Close() error { return d.renderNode.Close() }

// VAAPIDriver is the codec.Driver stub. A real implementation opens a
// render node, creates a VA session with profile HEVCMain, entrypoint
// EncSlice, RT format YUV420, and CQP rate control at init-QP 30.
type VAAPIDriver struct{}

// NewVAAPIDriver returns a driver stub; a real build constructs this
// against an open libva VADisplay.
func NewVAAPIDriver() *VAAPIDriver { return &VAAPIDriver{} }

func (d *VAAPIDriver) Capabilities() (codec.PackedHeaderCaps, hevc.Capabilities, codec.BlockSizeCaps, error) {
	return codec.PackedHeaderCaps{}, hevc.Capabilities{}, codec.BlockSizeCaps{}, ErrNotImplemented
}
func (d *VAAPIDriver) CreateInputSurface(uint32, uint32) (codec.Surface, error) {
	return nil, ErrNotImplemented
}
func (d *VAAPIDriver) CreateReconstructionRing(uint32, uint32) ([2]codec.Surface, error) {
	return [2]codec.Surface{}, ErrNotImplemented
}
func (d *VAAPIDriver) ExportInputImage() (uint32, uint32, uint32, []gpu.Plane, error) {
	return 0, 0, 0, nil, ErrNotImplemented
}
func (d *VAAPIDriver) UploadSequenceParams(hevc.SeqParams) error { return ErrNotImplemented }
func (d *VAAPIDriver) UploadPackedHeader([]byte) error            { return ErrNotImplemented }
func (d *VAAPIDriver) UploadPictureParams(hevc.PicParams, codec.Surface, *codec.Surface, bool) error {
	return ErrNotImplemented
}
func (d *VAAPIDriver) UploadSliceParams(hevc.SliceParams, *codec.Surface) error {
	return ErrNotImplemented
}
func (d *VAAPIDriver) EncodeFrame(codec.Surface) (*codec.CodedBuffer, error) {
	return nil, ErrNotImplemented
}
func (d *VAAPIDriver) DestroyFrameBuffers() error { return ErrNotImplemented }
func (d *VAAPIDriver) Close() error                { return nil }
