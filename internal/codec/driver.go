// Package codec drives the hardware HEVC encoder: surface lifecycle,
// reference-picture bookkeeping, header emission, and the per-frame
// sequence that ends in one wire-framed access unit. The actual VA-API
// session is modeled as the Driver interface so the state machine is
// testable against a mock.
package codec

import (
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/hevc"
)

// PackedHeaderCaps is the PackedHeaders bitmask the driver reports at
// construction.
type PackedHeaderCaps struct {
	Sequence bool // driver accepts an externally packed VPS+SPS+PPS buffer
	Slice    bool // driver accepts an externally packed slice header
}

// BlockSizeCaps is the HEVCBlockSizes driver attribute, used to compute
// the SPS's coding/transform block size fields.
type BlockSizeCaps struct {
	Log2MinLumaCodingBlockSizeMinus3  uint32
	Log2DiffMaxMinLumaCodingBlockSize uint32
	Log2MinTransformBlockSizeMinus2   uint32
	Log2DiffMaxMinTransformBlockSize  uint32
	MaxTransformHierarchyDepthInter   uint32
	MaxTransformHierarchyDepthIntra   uint32
}

// Surface is an opaque driver-side reconstruction or input surface handle.
type Surface any

// CodedBuffer is the mapped coded-data segment the driver returns after a
// successful encode. Next must be nil; multi-segment output is not
// supported.
type CodedBuffer struct {
	Data []byte
	Next *CodedBuffer
}

// Driver is the hardware/VA-API boundary this system does not implement
// directly; a real implementation opens a render node and a VA/codec
// session, a test implementation is a gomock-generated fake.
type Driver interface {
	// Capabilities returns the three driver attributes read once at
	// construction: PackedHeaders, HEVCFeatures (as hevc.Capabilities),
	// and HEVCBlockSizes.
	Capabilities() (PackedHeaderCaps, hevc.Capabilities, BlockSizeCaps, error)

	// CreateInputSurface allocates the persistent NV12 input surface the
	// orchestrator's GPU convert step renders into.
	CreateInputSurface(codedWidth, codedHeight uint32) (Surface, error)

	// ExportInputImage exports the persistent input surface's backing
	// dmabuf planes so the orchestrator can import it into the GPU
	// context once, as the Convert destination for every subsequent
	// frame.
	ExportInputImage() (width, height, fourcc uint32, planes []gpu.Plane, err error)

	// CreateReconstructionRing allocates the size-2 reconstruction ring.
	CreateReconstructionRing(codedWidth, codedHeight uint32) ([2]Surface, error)

	// UploadSequenceParams uploads a VA sequence-parameter buffer. Called
	// once per IDR.
	UploadSequenceParams(sp hevc.SeqParams) error

	// UploadPackedHeader uploads an externally packed header buffer (VPS+
	// SPS+PPS on IDR when Sequence packing is supported, or the slice
	// header when Slice packing is supported).
	UploadPackedHeader(data []byte) error

	// UploadPictureParams uploads the per-frame VA picture-parameter
	// buffer.
	UploadPictureParams(pp hevc.PicParams, curr Surface, ref *Surface, isIDR bool) error

	// UploadSliceParams uploads the per-frame VA slice-parameter buffer.
	UploadSliceParams(sp hevc.SliceParams, ref *Surface) error

	// EncodeFrame begins/renders/ends the picture on the input surface
	// and synchronously waits for the coded buffer.
	EncodeFrame(input Surface) (*CodedBuffer, error)

	// DestroyFrameBuffers releases the per-frame VA buffers in reverse
	// order.
	DestroyFrameBuffers() error

	// Close tears down the VA/codec session.
	Close() error
}
