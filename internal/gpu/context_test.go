package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	compiled    bool
	matrix      Matrix3
	ranges      Ranges
	imported    int
	released    []any
	lumaDraws   int
	chromaDraws int
	fenced      int
	lastOffsets [4][2]float32
	closeCalled bool
}

func (f *fakeDriver) CompilePrograms(matrix Matrix3, ranges Ranges) error {
	f.compiled = true
	f.matrix = matrix
	f.ranges = ranges
	return nil
}

func (f *fakeDriver) ImportImage(width, height, fourcc uint32, planes []Plane) (any, error) {
	f.imported++
	return f.imported, nil
}

func (f *fakeDriver) ReleaseImage(handle any) error {
	f.released = append(f.released, handle)
	return nil
}

func (f *fakeDriver) DrawLuma(from, to any, width, height uint32) error {
	f.lumaDraws++
	return nil
}

func (f *fakeDriver) DrawChroma(from, to any, offsets [4][2]float32, width, height uint32) error {
	f.chromaDraws++
	f.lastOffsets = offsets
	return nil
}

func (f *fakeDriver) Fence() error {
	f.fenced++
	return nil
}

func (f *fakeDriver) Close() error {
	f.closeCalled = true
	return nil
}

func TestNewContextCompilesPrograms(t *testing.T) {
	d := &fakeDriver{}
	_, err := NewContext(d, ItuRec709, FullRange)
	require.NoError(t, err)
	assert.True(t, d.compiled)
	assert.Equal(t, rec709Matrix, d.matrix)
	assert.Equal(t, Ranges{LumaOffset: 0, ChromaOffset: 0.5}, d.ranges)
}

func TestConvertDrawsLumaThenChromaThenFences(t *testing.T) {
	d := &fakeDriver{}
	ctx, err := NewContext(d, ItuRec601, NarrowRange)
	require.NoError(t, err)

	from, err := ctx.ImportDmabufImage(1920, 1080, 0, nil)
	require.NoError(t, err)
	to, err := ctx.ImportDmabufImage(1920, 1080, 0, nil)
	require.NoError(t, err)

	require.NoError(t, ctx.Convert(from, to))
	assert.Equal(t, 1, d.lumaDraws)
	assert.Equal(t, 1, d.chromaDraws)
	assert.Equal(t, 1, d.fenced)
	assert.Equal(t, SampleOffsets(1920, 1080), d.lastOffsets)
}

func TestImageCloseReleasesDriverHandle(t *testing.T) {
	d := &fakeDriver{}
	ctx, err := NewContext(d, ItuRec601, NarrowRange)
	require.NoError(t, err)

	img, err := ctx.ImportDmabufImage(64, 64, 0, nil)
	require.NoError(t, err)
	require.NoError(t, img.Close(d))
	assert.Len(t, d.released, 1)
}
