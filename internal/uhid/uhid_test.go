package uhid

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	writes [][]byte
}

func (f *fakeDevice) Write(record []byte) error {
	cp := make([]byte, len(record))
	copy(cp, record)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeDevice) EventsFD() int { return -1 }

func create2Record(rdSize uint16) []byte {
	buf := make([]byte, create2HeaderSize+int(rdSize))
	binary.LittleEndian.PutUint32(buf[:4], TypeCreate2)
	binary.LittleEndian.PutUint16(buf[create2RDSizeOffset:create2RDSizeOffset+2], rdSize)
	return buf
}

func TestCreate2RecordSplitAcrossThreeChunks(t *testing.T) {
	dev := &fakeDevice{}
	inj := New(dev)

	record := create2Record(0)
	require.Equal(t, 280, len(record))

	require.NoError(t, inj.Feed(record[:50]))
	assert.Empty(t, dev.writes)
	require.NoError(t, inj.Feed(record[50:150]))
	assert.Empty(t, dev.writes)
	require.NoError(t, inj.Feed(record[150:280]))

	require.Len(t, dev.writes, 1)
	assert.Equal(t, record, dev.writes[0])
	assert.Empty(t, inj.buf)
}

func TestDestroyRecordFixedSize(t *testing.T) {
	dev := &fakeDevice{}
	inj := New(dev)

	buf := make([]byte, destroyRecordSize)
	binary.LittleEndian.PutUint32(buf, TypeDestroy)

	require.NoError(t, inj.Feed(buf))
	require.Len(t, dev.writes, 1)
	assert.Equal(t, buf, dev.writes[0])
}

func TestInput2RecordUsesSizeField(t *testing.T) {
	dev := &fakeDevice{}
	inj := New(dev)

	payload := []byte{1, 2, 3, 4}
	buf := make([]byte, input2HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(buf[:4], TypeInput2)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(len(payload)))
	copy(buf[input2HeaderSize:], payload)

	require.NoError(t, inj.Feed(buf))
	require.Len(t, dev.writes, 1)
	assert.Equal(t, buf, dev.writes[0])
}

func TestMalformedTypeIsProtocolError(t *testing.T) {
	dev := &fakeDevice{}
	inj := New(dev)

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, 0xDEAD)
	err := inj.Feed(buf)
	require.Error(t, err)
}

func TestTwoRecordsBackToBack(t *testing.T) {
	dev := &fakeDevice{}
	inj := New(dev)

	destroy := make([]byte, destroyRecordSize)
	binary.LittleEndian.PutUint32(destroy, TypeDestroy)

	var combined []byte
	combined = append(combined, destroy...)
	combined = append(combined, destroy...)

	require.NoError(t, inj.Feed(combined))
	assert.Len(t, dev.writes, 2)
}
