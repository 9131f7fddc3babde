package codec

import (
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/hevc"
)

// mockDriver is a hand-written fake satisfying Driver, used to drive the
// encoder state machine's properties without real hardware. It
// tracks just enough call history for the assertions the tests make.
type mockDriver struct {
	packedHeaders PackedHeaderCaps
	features      hevc.Capabilities
	blockSizes    BlockSizeCaps
	codedBytes    int

	seqUploads      int
	capturedHeaders [][]byte
	pictureParams   []mockPictureCall
	sliceParams     []mockSliceCall
	encodeCalls     int
	destroyCalls    int
}

type mockPictureCall struct {
	isIDR bool
	ref   *Surface
}

type mockSliceCall struct {
	params hevc.SliceParams
	ref    *Surface
}

func newMockDriver(packedHeaders PackedHeaderCaps) *mockDriver {
	return &mockDriver{
		packedHeaders: packedHeaders,
		features:      hevc.DefaultCapabilities(),
		blockSizes:    BlockSizeCaps{},
		codedBytes:    1000,
	}
}

func (m *mockDriver) Capabilities() (PackedHeaderCaps, hevc.Capabilities, BlockSizeCaps, error) {
	return m.packedHeaders, m.features, m.blockSizes, nil
}

func (m *mockDriver) CreateInputSurface(w, h uint32) (Surface, error) {
	return "input", nil
}

func (m *mockDriver) CreateReconstructionRing(w, h uint32) ([2]Surface, error) {
	return [2]Surface{"recon0", "recon1"}, nil
}

func (m *mockDriver) ExportInputImage() (uint32, uint32, uint32, []gpu.Plane, error) {
	return 1920, 1080, 0, nil, nil
}

func (m *mockDriver) UploadSequenceParams(sp hevc.SeqParams) error {
	m.seqUploads++
	return nil
}

func (m *mockDriver) UploadPackedHeader(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.capturedHeaders = append(m.capturedHeaders, cp)
	return nil
}

func (m *mockDriver) UploadPictureParams(pp hevc.PicParams, curr Surface, ref *Surface, isIDR bool) error {
	m.pictureParams = append(m.pictureParams, mockPictureCall{isIDR: isIDR, ref: ref})
	return nil
}

func (m *mockDriver) UploadSliceParams(sp hevc.SliceParams, ref *Surface) error {
	m.sliceParams = append(m.sliceParams, mockSliceCall{params: sp, ref: ref})
	return nil
}

func (m *mockDriver) EncodeFrame(input Surface) (*CodedBuffer, error) {
	m.encodeCalls++
	return &CodedBuffer{Data: make([]byte, m.codedBytes)}, nil
}

func (m *mockDriver) DestroyFrameBuffers() error {
	m.destroyCalls++
	return nil
}

func (m *mockDriver) Close() error { return nil }
