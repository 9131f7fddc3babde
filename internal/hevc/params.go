package hevc

// ProfileTierLevel is the common profile/tier/level triplet written
// identically into the VPS and SPS.
type ProfileTierLevel struct {
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32 // deduced from GeneralProfileIDC if zero
	GeneralProgressiveSourceFlag     bool
	GeneralInterlacedSourceFlag      bool
	GeneralNonPackedConstraintFlag   bool
	GeneralFrameOnlyConstraintFlag   bool
	GeneralLevelIDC                  uint8
}

// SeqParams mirrors the fields of VAEncSequenceParameterBufferHEVC the SPS
// (and, for timing/ordering, the VPS) packing needs.
type SeqParams struct {
	PTL ProfileTierLevel

	PicWidthInLumaSamples  uint32
	PicHeightInLumaSamples uint32

	Log2MinLumaCodingBlockSizeMinus3  uint32
	Log2DiffMaxMinLumaCodingBlockSize uint32
	Log2MinTransformBlockSizeMinus2   uint32
	Log2DiffMaxMinTransformBlockSize  uint32
	MaxTransformHierarchyDepthInter   uint32
	MaxTransformHierarchyDepthIntra   uint32

	ChromaFormatIDC                 uint32
	Log2MaxPicOrderCntLsbMinus4     uint32 // fixed at 8
	SPSMaxDecPicBufferingMinus1     uint32
	SPSMaxNumReorderPics            uint32
	StrongIntraSmoothingEnabledFlag bool
	AmpEnabledFlag                  bool
	SampleAdaptiveOffsetEnabledFlag bool
	PCMEnabledFlag                  bool

	// Conformance-window crop size in luma samples; the SPS codes only the
	// right/bottom offsets, converted to chroma samples.
	CropWidth  uint32
	CropHeight uint32

	// VUI video-signal-type, from the encoder's codec.Colorspace.
	VideoFullRangeFlag      bool
	ColourPrimaries         uint8
	TransferCharacteristics uint8
	MatrixCoeffs            uint8

	TimeScale      uint32
	NumUnitsInTick uint32
}

// PicParams mirrors VAEncPictureParameterBufferHEVC's PPS-relevant fields.
type PicParams struct {
	DependentSliceSegmentsEnabledFlag bool
	SignDataHidingEnabledFlag         bool
	NumRefIdxL0DefaultActiveMinus1    uint32
	NumRefIdxL1DefaultActiveMinus1    uint32
	InitQP                            int32 // pic_init_qp
	CuQPDeltaEnabledFlag              bool
	TransquantBypassEnabledFlag       bool
	WeightedPredFlag                  bool
	WeightedBipredFlag                bool
	TransformSkipEnabledFlag          bool
	LoopFilterAcrossSlicesEnabledFlag bool
}

// SliceParams carries per-slice fields that vary frame to frame.
type SliceParams struct {
	FirstSliceSegmentInPicFlag             bool
	IsIDR                                  bool
	SlicePicOrderCntLsb                    uint32
	SliceQPDelta                           int32
	SliceTemporalMVPEnabledFlag            bool
	SliceSaoLumaFlag                       bool
	SliceSaoChromaFlag                     bool
	SliceDeblockingFilterDisabledFlag      bool
	SliceLoopFilterAcrossSlicesEnabledFlag bool
}

// Capabilities records the driver-advertised feature bits the NAL packer
// must validate against before emitting a syntax branch that assumes them.
// Unsupported branches fail construction.
type Capabilities struct {
	AMP           bool
	SAO           bool
	PCM           bool
	TemporalMVP   bool
	TransformSkip bool
}

// DefaultCapabilities matches the hardcoded fallback used when the driver
// does not report HEVCFeatures (Intel i965 Skylake behavior).
func DefaultCapabilities() Capabilities {
	return Capabilities{AMP: true, SAO: true, PCM: false, TemporalMVP: false, TransformSkip: false}
}
