package wire

import (
	"bytes"
	"os/signal"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func init() {
	// cmd/deskstreamd ignores SIGPIPE at startup; mirror
	// that here so a broken client fd surfaces as EPIPE rather than
	// killing the test process.
	signal.Ignore(syscall.SIGPIPE)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Size: 1234, Type: TypeVideo, Flags: Keyframe, Latency: 42}
	buf := h.Marshal()
	got, err := UnmarshalHeader(buf[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestWriteFrameThenReadHeader(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	payload := []byte("hello, encoded access unit")
	h := Header{Size: uint32(len(payload)), Type: TypeVideo, Flags: Keyframe, Latency: 7}
	require.NoError(t, WriteFrame(fds[0], h, payload))

	buf := make([]byte, HeaderSize+len(payload))
	n, err := unix.Read(fds[1], buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	got, err := UnmarshalHeader(buf[:HeaderSize])
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.True(t, bytes.Equal(payload, buf[HeaderSize:]))
}

func TestAdvancePartialWrite(t *testing.T) {
	iovs := [][]byte{[]byte("abcd"), []byte("efghij")}
	total := 4 + 6
	half := total / 2

	remaining := advance(iovs, half)
	var got []byte
	for _, b := range remaining {
		got = append(got, b...)
	}
	assert.Equal(t, "fghij", string(got))

	done := advance(remaining, len(got))
	assert.Empty(t, done)
}

func TestWriteFrameEPIPE(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	unix.Close(fds[1]) // close the read end so writes fail with EPIPE

	err = WriteFrame(fds[0], Header{Type: TypeMisc}, nil)
	require.Error(t, err)
	unix.Close(fds[0])
}
