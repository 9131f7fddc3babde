// Package gpu implements the headless GL ES color-conversion context:
// two fragment shader programs (luma, 2x2-subsampled chroma) sharing one
// full-screen-quad vertex shader, dmabuf-backed image import, and a
// fence-synchronized convert operation. The actual EGL/GLES calls are an
// external collaborator (driver-specific, requires a real display/render
// node); this package models the contract as the Driver interface so the
// conversion math and resource lifecycle are independently testable.
package gpu

// Colorspace selects the RGB-to-YUV matrix.
type Colorspace int

const (
	ItuRec601 Colorspace = iota
	ItuRec709
)

// Range selects narrow (studio, 16-235) or full (0-255) output range.
type Range int

const (
	NarrowRange Range = iota
	FullRange
)

// Matrix3 is a row-major 3x3 RGB-to-YUV matrix.
type Matrix3 [9]float32

// rec601Matrix and rec709Matrix are the standard BT.601/BT.709 RGB->YUV
// coefficient matrices (Y row, then U/Cb row, then V/Cr row).
var rec601Matrix = Matrix3{
	0.299, 0.587, 0.114,
	-0.168736, -0.331264, 0.5,
	0.5, -0.418688, -0.081312,
}

var rec709Matrix = Matrix3{
	0.2126, 0.7152, 0.0722,
	-0.114572, -0.385428, 0.5,
	0.5, -0.454153, -0.045847,
}

// Matrix returns the 3x3 coefficient matrix for cs.
func Matrix(cs Colorspace) Matrix3 {
	if cs == ItuRec709 {
		return rec709Matrix
	}
	return rec601Matrix
}

// Ranges holds the low bound used for luma and the neutral midpoint used
// for chroma, both normalized to [0,1], for narrow and full range.
type Ranges struct {
	LumaOffset   float32
	ChromaOffset float32
}

// RangeOffsets returns the offsets the fragment shaders add after applying
// the colorspace matrix.
func RangeOffsets(r Range) Ranges {
	if r == FullRange {
		return Ranges{LumaOffset: 0, ChromaOffset: 0.5}
	}
	return Ranges{LumaOffset: 16.0 / 255.0, ChromaOffset: 0.5}
}

// SampleOffsets returns the four 2x2 texel-center offsets the chroma
// program samples and averages, for a source of the given pixel
// dimensions.
func SampleOffsets(width, height uint32) [4][2]float32 {
	w := 1.0 / float32(width)
	h := 1.0 / float32(height)
	return [4][2]float32{
		{0, 0},
		{w, 0},
		{0, h},
		{w, h},
	}
}
