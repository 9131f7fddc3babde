package codec

import (
	"time"

	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/hevc"
	"github.com/zsiec/deskstream/internal/streamerr"
	"github.com/zsiec/deskstream/internal/wire"
)

// IntraIDRPeriod is a tunable constant, not a derived value: every frame
// whose counter is a multiple of this period is an IDR.
const IntraIDRPeriod = 120

const minCB = 16

// ringSize is the reconstruction-surface ring depth.
const ringSize = 2

const pictureInitQP = 30

// Colorspace parameters negotiated at session start, mirrored into the
// SPS's VUI video-signal-type fields.
type Colorspace struct {
	FullRange               bool
	ColourPrimaries         uint8
	TransferCharacteristics uint8
	MatrixCoeffs            uint8
}

// Encoder is the per-session HEVC encoder state machine. It is not
// safe for concurrent use; it is driven from the main thread only.
type Encoder struct {
	driver Driver
	packer *hevc.Packer

	packedHeaders PackedHeaderCaps
	features      hevc.Capabilities
	blockSizes    BlockSizeCaps

	width, height           uint32
	codedWidth, codedHeight uint32
	colorspace              Colorspace

	input Surface
	ring  [ringSize]Surface

	frameCounter uint64

	seqParams hevc.SeqParams
	picParams hevc.PicParams
}

// New probes driver's capabilities, validates the syntax branches the
// packer will need, allocates the input and reconstruction surfaces at
// the 16-pixel-aligned coded size, and populates the mutable parameter
// templates patched per frame.
func New(driver Driver, width, height uint32, cs Colorspace) (*Encoder, error) {
	packedHeaders, features, blockSizes, err := driver.Capabilities()
	if err != nil {
		return nil, streamerr.New(streamerr.Encoder, "codec", err)
	}
	if !features.AMP && !features.SAO {
		features = hevc.DefaultCapabilities()
	}

	packer, err := hevc.NewPacker(mainProfileTierLevel(), features)
	if err != nil {
		return nil, err
	}

	codedWidth := ceilToMinCB(width)
	codedHeight := ceilToMinCB(height)

	input, err := driver.CreateInputSurface(codedWidth, codedHeight)
	if err != nil {
		return nil, streamerr.New(streamerr.Encoder, "codec", err)
	}
	ring, err := driver.CreateReconstructionRing(codedWidth, codedHeight)
	if err != nil {
		return nil, streamerr.New(streamerr.Encoder, "codec", err)
	}

	e := &Encoder{
		driver:        driver,
		packer:        packer,
		packedHeaders: packedHeaders,
		features:      features,
		blockSizes:    blockSizes,
		width:         width,
		height:        height,
		codedWidth:    codedWidth,
		codedHeight:   codedHeight,
		colorspace:    cs,
		input:         input,
		ring:          ring,
	}
	e.seqParams = e.buildSeqParams()
	e.picParams = e.buildPicParams()
	return e, nil
}

func ceilToMinCB(v uint32) uint32 {
	return (v + minCB - 1) / minCB * minCB
}

// mainProfileTierLevel is the fixed Main-profile triplet this encoder
// negotiates its sessions with.
func mainProfileTierLevel() hevc.ProfileTierLevel {
	return hevc.ProfileTierLevel{
		GeneralProfileIDC: 1, // Main
		GeneralLevelIDC:   120,
	}
}

func (e *Encoder) buildSeqParams() hevc.SeqParams {
	return hevc.SeqParams{
		PTL:                               mainProfileTierLevel(),
		PicWidthInLumaSamples:             e.codedWidth,
		PicHeightInLumaSamples:            e.codedHeight,
		CropWidth:                         e.width,
		CropHeight:                        e.height,
		ChromaFormatIDC:                   1, // 4:2:0
		Log2MinLumaCodingBlockSizeMinus3:  e.blockSizes.Log2MinLumaCodingBlockSizeMinus3,
		Log2DiffMaxMinLumaCodingBlockSize: e.blockSizes.Log2DiffMaxMinLumaCodingBlockSize,
		Log2MinTransformBlockSizeMinus2:   e.blockSizes.Log2MinTransformBlockSizeMinus2,
		Log2DiffMaxMinTransformBlockSize:  e.blockSizes.Log2DiffMaxMinTransformBlockSize,
		MaxTransformHierarchyDepthInter:   e.blockSizes.MaxTransformHierarchyDepthInter,
		MaxTransformHierarchyDepthIntra:   e.blockSizes.MaxTransformHierarchyDepthIntra,
		VideoFullRangeFlag:                e.colorspace.FullRange,
		ColourPrimaries:                   e.colorspace.ColourPrimaries,
		TransferCharacteristics:           e.colorspace.TransferCharacteristics,
		MatrixCoeffs:                      e.colorspace.MatrixCoeffs,
		NumUnitsInTick:                    1,
		TimeScale:                         60,
	}
}

func (e *Encoder) buildPicParams() hevc.PicParams {
	return hevc.PicParams{
		InitQP:                            pictureInitQP,
		LoopFilterAcrossSlicesEnabledFlag: true,
	}
}

// isIDR reports whether frameCounter selects an IDR frame.
func isIDR(frameCounter uint64) bool {
	return frameCounter%IntraIDRPeriod == 0
}

// InputImage returns the persistent input surface the orchestrator's GPU
// convert step renders into. Idempotent.
func (e *Encoder) InputImage() Surface { return e.input }

// InputImagePlanes exports the input surface's backing dmabuf planes, so
// the orchestrator can import it into the GPU context as the Convert
// destination once, immediately after creating the encoder.
func (e *Encoder) InputImagePlanes() (width, height, fourcc uint32, planes []gpu.Plane, err error) {
	return e.driver.ExportInputImage()
}

// EncodeFrame runs one full encode-and-write cycle for the frame captured
// at captureTime, writing exactly one VIDEO wire frame to clientFd on
// success. latency is measured from captureTime to just before the
// write.
func (e *Encoder) EncodeFrame(clientFd int, captureTime time.Time) error {
	idr := isIDR(e.frameCounter)
	poc := uint32(e.frameCounter % IntraIDRPeriod)
	ringIdx := e.frameCounter % ringSize
	curr := e.ring[ringIdx]

	if idr {
		if err := e.driver.UploadSequenceParams(e.seqParams); err != nil {
			return streamerr.New(streamerr.Encoder, "codec", err)
		}
		if e.packedHeaders.Sequence {
			packed := e.packVPSSPSPPS()
			if err := e.driver.UploadPackedHeader(packed); err != nil {
				return streamerr.New(streamerr.Encoder, "codec", err)
			}
		}
	}

	var ref *Surface
	if !idr {
		prevIdx := (e.frameCounter - 1) % ringSize
		prev := e.ring[prevIdx]
		ref = &prev
	}

	nalType := uint8(hevc.NALTrailR)
	if idr {
		nalType = hevc.NALIDRWRadl
	}

	if err := e.driver.UploadPictureParams(e.picParams, curr, ref, idr); err != nil {
		return streamerr.New(streamerr.Encoder, "codec", err)
	}

	sliceParams := hevc.SliceParams{
		FirstSliceSegmentInPicFlag:             true,
		IsIDR:                                  idr,
		SlicePicOrderCntLsb:                    poc,
		SliceQPDelta:                           0,
		SliceTemporalMVPEnabledFlag:            e.features.TemporalMVP,
		SliceSaoLumaFlag:                       e.features.SAO,
		SliceSaoChromaFlag:                     e.features.SAO,
		SliceLoopFilterAcrossSlicesEnabledFlag: true,
	}
	if e.packedHeaders.Slice {
		packed := e.packer.PackSliceSegmentHeader(nalType, e.picParams, sliceParams)
		if err := e.driver.UploadPackedHeader(packed); err != nil {
			return streamerr.New(streamerr.Encoder, "codec", err)
		}
	}
	if err := e.driver.UploadSliceParams(sliceParams, ref); err != nil {
		return streamerr.New(streamerr.Encoder, "codec", err)
	}

	coded, err := e.driver.EncodeFrame(e.input)
	if err != nil {
		return streamerr.New(streamerr.Encoder, "codec", err)
	}
	if coded.Next != nil {
		return streamerr.Newf(streamerr.Encoder, "codec", "multi-segment coded output not supported")
	}

	latencyMs := uint16(time.Since(captureTime).Microseconds() / 1000)

	flags := uint8(0)
	if idr {
		flags = wire.Keyframe
	}
	if err := wire.WriteFrame(clientFd, wire.Header{
		Size:    uint32(len(coded.Data)),
		Type:    wire.TypeVideo,
		Flags:   flags,
		Latency: latencyMs,
	}, coded.Data); err != nil {
		return err
	}

	if err := e.driver.DestroyFrameBuffers(); err != nil {
		return streamerr.New(streamerr.Encoder, "codec", err)
	}

	e.frameCounter++
	return nil
}

func (e *Encoder) packVPSSPSPPS() []byte {
	var out []byte
	out = append(out, e.packer.PackVPS(e.seqParams)...)
	out = append(out, e.packer.PackSPS(e.seqParams)...)
	out = append(out, e.packer.PackPPS(e.picParams)...)
	return out
}

// FrameCounter returns the number of successfully encoded frames.
func (e *Encoder) FrameCounter() uint64 { return e.frameCounter }

// Close tears down the underlying driver session.
func (e *Encoder) Close() error {
	return e.driver.Close()
}
