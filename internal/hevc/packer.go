package hevc

import (
	"github.com/zsiec/deskstream/internal/bitio"
	"github.com/zsiec/deskstream/internal/streamerr"
)

// Packer emits VPS/SPS/PPS and slice-segment-header NAL units for a single
// encode session. All feature-dependent syntax branches are validated once
// at construction against the session's profile and the driver-advertised
// Capabilities; Pack* methods themselves never fail.
type Packer struct {
	ptl  ProfileTierLevel
	caps Capabilities
}

// NewPacker validates ptl and caps against the syntax branches this packer
// knows how to emit and returns a ready-to-use Packer, or a
// streamerr.Encoder error (NotSupported) if the combination requires an
// unimplemented branch.
func NewPacker(ptl ProfileTierLevel, caps Capabilities) (*Packer, error) {
	// The profile_tier_level() constraint bits are only emitted for the
	// Main-range profiles.
	if ptl.GeneralProfileIDC != 1 && ptl.GeneralProfileIDC != 2 {
		return nil, streamerr.Newf(streamerr.Encoder, "hevc", "general_profile_idc %d not supported", ptl.GeneralProfileIDC)
	}
	if caps.PCM {
		return nil, streamerr.Newf(streamerr.Encoder, "hevc", "pcm_enabled_flag not supported")
	}
	if caps.TransformSkip {
		return nil, streamerr.Newf(streamerr.Encoder, "hevc", "transform_skip_enabled_flag not supported")
	}
	return &Packer{ptl: ptl, caps: caps}, nil
}

// PackVPS emits the video_parameter_set_rbsp() NAL unit. maxBDepth is
// always 0 (no B-frames in this system), so max_dec_pic_buffering_minus1
// and max_num_reorder_pics collapse to 1 and 0 respectively.
func (p *Packer) PackVPS(sp SeqParams) []byte {
	const maxBDepth = 0
	w := bitio.NewWriter(32)

	w.Append(4, 0)  // vps_video_parameter_set_id
	w.Append(1, 1)  // vps_base_layer_internal_flag
	w.Append(1, 1)  // vps_base_layer_available_flag
	w.Append(6, 0)  // vps_max_layers_minus1
	w.Append(3, 0)  // vps_max_sub_layers_minus1
	w.Append(1, 1)  // vps_temporal_id_nesting_flag
	w.Append(16, 0xFFFF) // vps_reserved_0xffff_16bits

	packProfileTierLevel(w, p.ptl)

	w.Append(1, 0) // vps_sub_layer_ordering_info_present_flag
	w.AppendUE(maxBDepth + 1) // vps_max_dec_pic_buffering_minus1
	w.AppendUE(maxBDepth)     // vps_max_num_reorder_pics
	w.AppendUE(0)             // vps_max_latency_increase_plus1

	w.Append(6, 0) // vps_max_layer_id
	w.AppendUE(0)  // vps_num_layer_sets_minus1

	w.Append(1, 1) // vps_timing_info_present_flag
	w.Append(32, sp.NumUnitsInTick)
	w.Append(32, sp.TimeScale)
	w.Append(1, 0) // vps_poc_proportional_to_timing_flag
	w.AppendUE(0)  // vps_num_hrd_parameters

	w.Append(1, 0) // vps_extension_flag

	rbspTrailingBits(w)
	return packNALUnit(NALVPS, w.Bytes())
}

// PackSPS emits the seq_parameter_set_rbsp() NAL unit.
func (p *Packer) PackSPS(sp SeqParams) []byte {
	const maxBDepth = 0
	w := bitio.NewWriter(64)

	w.Append(4, 0) // sps_video_parameter_set_id
	w.Append(3, 0) // sps_max_sub_layers_minus1
	w.Append(1, 1) // sps_temporal_id_nesting_flag

	packProfileTierLevel(w, p.ptl)

	w.AppendUE(0) // sps_seq_parameter_set_id
	w.AppendUE(sp.ChromaFormatIDC)
	w.AppendUE(sp.PicWidthInLumaSamples)
	w.AppendUE(sp.PicHeightInLumaSamples)

	confWin := sp.CropWidth != sp.PicWidthInLumaSamples || sp.CropHeight != sp.PicHeightInLumaSamples
	w.Append(1, boolBit(confWin))
	if confWin {
		w.AppendUE(0)
		w.AppendUE((sp.PicWidthInLumaSamples - sp.CropWidth) / subWidthC(sp.ChromaFormatIDC))
		w.AppendUE(0)
		w.AppendUE((sp.PicHeightInLumaSamples - sp.CropHeight) / subHeightC(sp.ChromaFormatIDC))
	}

	w.AppendUE(0) // bit_depth_luma_minus8
	w.AppendUE(0) // bit_depth_chroma_minus8
	w.AppendUE(8) // log2_max_pic_order_cnt_lsb_minus4

	w.Append(1, 0) // sps_sub_layer_ordering_info_present_flag
	w.AppendUE(maxBDepth + 1) // sps_max_dec_pic_buffering_minus1
	w.AppendUE(maxBDepth)     // sps_max_num_reorder_pics
	w.AppendUE(0)             // sps_max_latency_increase_plus1

	w.AppendUE(sp.Log2MinLumaCodingBlockSizeMinus3)
	w.AppendUE(sp.Log2DiffMaxMinLumaCodingBlockSize)
	w.AppendUE(sp.Log2MinTransformBlockSizeMinus2)
	w.AppendUE(sp.Log2DiffMaxMinTransformBlockSize)
	w.AppendUE(sp.MaxTransformHierarchyDepthInter)
	w.AppendUE(sp.MaxTransformHierarchyDepthIntra)

	w.Append(1, 0) // scaling_list_enabled_flag
	w.Append(1, boolBit(p.caps.AMP))
	w.Append(1, boolBit(p.caps.SAO))
	w.Append(1, 0) // pcm_enabled_flag, validated unsupported at construction

	w.AppendUE(0) // num_short_term_ref_pic_sets
	w.Append(1, 0) // long_term_ref_pics_present_flag
	w.Append(1, boolBit(p.caps.TemporalMVP))
	w.Append(1, boolBit(sp.StrongIntraSmoothingEnabledFlag))

	w.Append(1, 1) // vui_parameters_present_flag
	packVUIParameters(w, sp)

	w.Append(1, 0) // sps_extension_present_flag

	rbspTrailingBits(w)
	return packNALUnit(NALSPS, w.Bytes())
}

func subWidthC(chromaFormatIDC uint32) uint32 {
	if chromaFormatIDC == 0 {
		return 1
	}
	return 2
}

func subHeightC(chromaFormatIDC uint32) uint32 {
	if chromaFormatIDC == 1 {
		return 2
	}
	return 1
}

func packVUIParameters(w *bitio.Writer, sp SeqParams) {
	w.Append(1, 0) // aspect_ratio_info_present_flag
	w.Append(1, 0) // overscan_info_present_flag

	w.Append(1, 1) // video_signal_type_present_flag
	w.Append(3, 5) // video_format = unspecified
	w.Append(1, boolBit(sp.VideoFullRangeFlag))
	w.Append(1, 1) // colour_description_present_flag
	w.Append(8, uint32(sp.ColourPrimaries))
	w.Append(8, uint32(sp.TransferCharacteristics))
	w.Append(8, uint32(sp.MatrixCoeffs))

	w.Append(1, 0) // chroma_loc_info_present_flag
	w.Append(1, 0) // neutral_chroma_indication_flag
	w.Append(1, 0) // field_seq_flag
	w.Append(1, 0) // frame_field_info_present_flag
	w.Append(1, 0) // default_display_window_flag

	w.Append(1, 1) // vui_timing_info_present_flag
	w.Append(32, sp.NumUnitsInTick)
	w.Append(32, sp.TimeScale)
	w.Append(1, 0) // vui_poc_proportional_to_timing_flag
	w.Append(1, 0) // vui_hrd_parameters_present_flag

	w.Append(1, 0) // bitstream_restriction_flag
}

// PackPPS emits the pic_parameter_set_rbsp() NAL unit.
func (p *Packer) PackPPS(pp PicParams) []byte {
	w := bitio.NewWriter(16)

	w.AppendUE(0) // pps_pic_parameter_set_id
	w.AppendUE(0) // pps_seq_parameter_set_id

	w.Append(1, boolBit(pp.DependentSliceSegmentsEnabledFlag))
	w.Append(1, 0) // output_flag_present_flag
	w.Append(3, 0) // num_extra_slice_header_bits
	w.Append(1, boolBit(pp.SignDataHidingEnabledFlag))
	w.Append(1, 0) // cabac_init_present_flag

	w.AppendUE(pp.NumRefIdxL0DefaultActiveMinus1)
	w.AppendUE(pp.NumRefIdxL1DefaultActiveMinus1)
	w.AppendSE(pp.InitQP - 26) // init_qp_minus26

	w.Append(1, 0) // constrained_intra_pred_flag
	w.Append(1, boolBit(pp.TransformSkipEnabledFlag))
	w.Append(1, boolBit(pp.CuQPDeltaEnabledFlag))
	if pp.CuQPDeltaEnabledFlag {
		w.AppendUE(0) // diff_cu_qp_delta_depth
	}
	w.AppendSE(0) // pps_cb_qp_offset
	w.AppendSE(0) // pps_cr_qp_offset
	w.Append(1, 0) // pps_slice_chroma_qp_offsets_present_flag
	w.Append(1, boolBit(pp.WeightedPredFlag))
	w.Append(1, boolBit(pp.WeightedBipredFlag))
	w.Append(1, boolBit(pp.TransquantBypassEnabledFlag))
	w.Append(1, 0) // tiles_enabled_flag
	w.Append(1, 0) // entropy_coding_sync_enabled_flag

	w.Append(1, boolBit(pp.LoopFilterAcrossSlicesEnabledFlag))
	w.Append(1, 0) // deblocking_filter_control_present_flag
	w.Append(1, 0) // pps_scaling_list_data_present_flag
	w.Append(1, 0) // lists_modification_present_flag
	w.AppendUE(0)   // log2_parallel_merge_level_minus2
	w.Append(1, 0) // slice_segment_header_extension_present_flag
	w.Append(1, 0) // pps_extension_present_flag

	rbspTrailingBits(w)
	return packNALUnit(NALPPS, w.Bytes())
}

// packShortTermRefPicSet emits the inline st_ref_pic_set(0): exactly one
// negative picture, delta_poc_s0_minus1=0, used.
func packShortTermRefPicSet(w *bitio.Writer) {
	w.AppendUE(1) // num_negative_pics
	w.AppendUE(0) // num_positive_pics
	w.AppendUE(0) // delta_poc_s0_minus1[0]
	w.Append(1, 1) // used_by_curr_pic_s0_flag[0]
}

// PackSliceSegmentHeader emits the slice_segment_header() that precedes
// each frame's coded slice data. pp must be the same PicParams the PPS was
// packed from, since several slice syntax branches are conditioned on PPS
// flags. first_slice_segment_in_pic_flag is always set (single slice per
// picture), which skips the dependent-slice branch entirely.
func (p *Packer) PackSliceSegmentHeader(nalType uint8, pp PicParams, sl SliceParams) []byte {
	w := bitio.NewWriter(16)

	w.Append(1, boolBit(sl.FirstSliceSegmentInPicFlag))
	if nalType >= NALBlaWLp && nalType <= NALRsvIrapVcl23 {
		w.Append(1, 0) // no_output_of_prior_pics_flag
	}

	w.AppendUE(0) // slice_pic_parameter_set_id

	if sl.IsIDR {
		w.AppendUE(2) // slice_type = I
	} else {
		w.AppendUE(1) // slice_type = P
		// log2_max_pic_order_cnt_lsb_minus4 is fixed at 8, so the lsb
		// field is 12 bits wide.
		w.Append(12, sl.SlicePicOrderCntLsb)
		w.Append(1, 0) // short_term_ref_pic_set_sps_flag
		packShortTermRefPicSet(w)
		if p.caps.TemporalMVP {
			w.Append(1, boolBit(sl.SliceTemporalMVPEnabledFlag))
		}
	}

	if p.caps.SAO {
		w.Append(1, boolBit(sl.SliceSaoLumaFlag))
		// ChromaArrayType == chroma_format_idc (1) since colour planes
		// are not separate.
		w.Append(1, boolBit(sl.SliceSaoChromaFlag))
	}

	if !sl.IsIDR {
		w.Append(1, 0) // num_ref_idx_active_override_flag
		// slice_temporal_mvp collocated fields are absent: for a P slice
		// collocated_from_l0_flag is inferred and the ref index is only
		// coded with more than one active l0 reference.
		w.AppendUE(0) // five_minus_max_num_merge_cand
	}

	w.AppendSE(sl.SliceQPDelta)

	if pp.LoopFilterAcrossSlicesEnabledFlag &&
		(sl.SliceSaoLumaFlag || sl.SliceSaoChromaFlag || !sl.SliceDeblockingFilterDisabledFlag) {
		w.Append(1, boolBit(sl.SliceLoopFilterAcrossSlicesEnabledFlag))
	}

	// No tiles and no entropy-coding sync, so num_entry_point_offsets is
	// not coded at all.

	rbspTrailingBits(w)
	return packNALUnit(nalType, w.Bytes())
}
