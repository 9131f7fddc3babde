// Package hevc packs the HEVC NAL units the encoder hands to the codec
// driver as packed headers when the driver advertises packed-header
// support: VPS, SPS, PPS, and the per-frame slice segment header. Syntax follows
// ITU-T H.265; the reference semantics (which fields are hardcoded, which
// are driver-derived) are grounded on the Intel i965/iHD VA-API driver
// defaults this system targets.
package hevc

import "github.com/zsiec/deskstream/internal/bitio"

// NAL unit types used by this system. Only the subset the encoder emits is
// named; the rest of the H.265 type space is irrelevant here.
const (
	NALTrailR   = 1
	NALBlaWLp   = 16
	NALIDRWRadl = 19
	// NALRsvIrapVcl23 closes the IRAP range that carries
	// no_output_of_prior_pics_flag in the slice header.
	NALRsvIrapVcl23 = 23
	NALVPS          = 32
	NALSPS          = 33
	NALPPS          = 34
)

var startCode = []byte{0, 0, 0, 1}

// packNALUnit wraps an RBSP with the Annex-B start code and the 2-byte NAL
// header (forbidden_zero_bit=0, nuh_layer_id=0, nuh_temporal_id_plus1=1).
func packNALUnit(nalType uint8, rbsp []byte) []byte {
	out := make([]byte, 0, len(startCode)+2+len(rbsp))
	out = append(out, startCode...)
	out = append(out, byte(nalType)<<1, 1)
	out = append(out, rbsp...)
	return out
}

// rbspTrailingBits appends rbsp_stop_one_bit followed by zero-padding to
// the next byte boundary.
func rbspTrailingBits(w *bitio.Writer) {
	w.Append(1, 1)
	w.ByteAlign()
}
