package hevc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/deskstream/internal/bitio"
)

func testSeqParams() SeqParams {
	return SeqParams{
		PTL: ProfileTierLevel{
			GeneralProfileSpace: 0,
			GeneralProfileIDC:   1,
			GeneralLevelIDC:     120,
		},
		PicWidthInLumaSamples:  1920,
		PicHeightInLumaSamples: 1088,
		CropWidth:              1920,
		CropHeight:             1080,
		ChromaFormatIDC:        1,
		NumUnitsInTick:         1,
		TimeScale:              60,
		ColourPrimaries:        1,
		TransferCharacteristics: 1,
		MatrixCoeffs:           1,
	}
}

func testPicParams() PicParams {
	return PicParams{
		InitQP:                            30,
		LoopFilterAcrossSlicesEnabledFlag: true,
	}
}

func TestPackVPSStartsWithStartCodeAndType(t *testing.T) {
	p, err := NewPacker(testSeqParams().PTL, DefaultCapabilities())
	require.NoError(t, err)

	nal := p.PackVPS(testSeqParams())
	require.True(t, len(nal) > 6)
	assert.Equal(t, []byte{0, 0, 0, 1}, nal[:4])
	assert.Equal(t, uint8(NALVPS), (nal[4]>>1)&0x3F)
}

func TestPackSPSConformanceWindow(t *testing.T) {
	p, err := NewPacker(testSeqParams().PTL, DefaultCapabilities())
	require.NoError(t, err)

	sp := testSeqParams()
	nal := p.PackSPS(sp)
	assert.Equal(t, uint8(NALSPS), (nal[4]>>1)&0x3F)

	// Equal crop and coded size must NOT set conformance_window_flag.
	sp2 := sp
	sp2.CropWidth = sp2.PicWidthInLumaSamples
	sp2.CropHeight = sp2.PicHeightInLumaSamples
	nal2 := p.PackSPS(sp2)
	assert.NotEqual(t, nal, nal2)
}

func TestPackPPSInitQP(t *testing.T) {
	p, err := NewPacker(testSeqParams().PTL, DefaultCapabilities())
	require.NoError(t, err)

	nal := p.PackPPS(PicParams{InitQP: 30})
	assert.Equal(t, uint8(NALPPS), (nal[4]>>1)&0x3F)

	r := rbsp(t, nal)
	r.ReadUE()    // pps_pic_parameter_set_id
	r.ReadUE()    // pps_seq_parameter_set_id
	r.ReadBits(7) // dependent_slice_segments_enabled_flag .. cabac_init_present_flag
	r.ReadUE()    // num_ref_idx_l0_default_active_minus1
	r.ReadUE()    // num_ref_idx_l1_default_active_minus1
	assert.Equal(t, int32(4), r.ReadSE(), "init_qp_minus26")
}

func TestPackSliceSegmentHeaderIDRvsP(t *testing.T) {
	p, err := NewPacker(testSeqParams().PTL, DefaultCapabilities())
	require.NoError(t, err)

	idr := p.PackSliceSegmentHeader(NALIDRWRadl, testPicParams(), SliceParams{
		FirstSliceSegmentInPicFlag: true,
		IsIDR:                      true,
	})
	assert.Equal(t, uint8(NALIDRWRadl), (idr[4]>>1)&0x3F)

	trail := p.PackSliceSegmentHeader(NALTrailR, testPicParams(), SliceParams{
		FirstSliceSegmentInPicFlag: true,
		IsIDR:                      false,
		SlicePicOrderCntLsb:        1,
	})
	assert.Equal(t, uint8(NALTrailR), (trail[4]>>1)&0x3F)
	assert.NotEqual(t, idr, trail)
}

func TestNewPackerRejectsUnsupportedFeatures(t *testing.T) {
	_, err := NewPacker(testSeqParams().PTL, Capabilities{PCM: true})
	require.Error(t, err)

	_, err = NewPacker(testSeqParams().PTL, Capabilities{TransformSkip: true})
	require.Error(t, err)
}

func TestNewPackerRejectsNonMainProfile(t *testing.T) {
	ptl := testSeqParams().PTL
	ptl.GeneralProfileIDC = 4 // range extensions
	_, err := NewPacker(ptl, DefaultCapabilities())
	require.Error(t, err)
}

func TestPackRbspTrailingBitsByteAligns(t *testing.T) {
	w := bitio.NewWriter(4)
	w.Append(3, 5)
	rbspTrailingBits(w)
	assert.Equal(t, 0, w.Len()%8)
}
