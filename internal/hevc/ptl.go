package hevc

import "github.com/zsiec/deskstream/internal/bitio"

// packProfileTierLevel writes the profile_tier_level() syntax structure.
// maxNumSubLayersMinus1 is always 0 for this system (no temporal scalability).
func packProfileTierLevel(w *bitio.Writer, ptl ProfileTierLevel) {
	w.Append(2, uint32(ptl.GeneralProfileSpace))
	w.Append(1, boolBit(ptl.GeneralTierFlag))
	w.Append(5, uint32(ptl.GeneralProfileIDC))

	// Compatibility flags are deduced from the profile: Main implies
	// Main10 compatibility, Main Still Picture implies both.
	compat := ptl.GeneralProfileCompatibilityFlags
	if compat == 0 {
		compat = 1 << (31 - ptl.GeneralProfileIDC)
		if ptl.GeneralProfileIDC == 1 || ptl.GeneralProfileIDC == 3 {
			compat |= 1 << (31 - 2)
		}
		if ptl.GeneralProfileIDC == 3 {
			compat |= 1 << (31 - 1)
		}
	}
	w.Append(32, compat)

	w.Append(1, boolBit(ptl.GeneralProgressiveSourceFlag))
	w.Append(1, boolBit(ptl.GeneralInterlacedSourceFlag))
	w.Append(1, boolBit(ptl.GeneralNonPackedConstraintFlag))
	w.Append(1, boolBit(ptl.GeneralFrameOnlyConstraintFlag))

	// 43 reserved/constraint bits plus the trailing inbld/reserved bit,
	// all zero for the Main-range profiles NewPacker admits
	// (general_one_picture_only_constraint_flag and general_inbld_flag
	// stay unset).
	w.Append(32, 0)
	w.Append(12, 0)

	w.Append(8, uint32(ptl.GeneralLevelIDC))
	// sub_layer_profile_present_flag / sub_layer_level_present_flag for
	// each of maxNumSubLayersMinus1 (0) sub-layers: none to write.
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
