// Package wire implements the fixed-header framed records carried
// over the single TCP connection: an 8-byte little-endian header followed
// by size bytes of payload.
package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/zsiec/deskstream/internal/streamerr"
)

// Frame types.
const (
	TypeMisc  uint8 = 0
	TypeVideo uint8 = 1
	TypeAudio uint8 = 2
)

// Keyframe is flag bit 0.
const Keyframe uint8 = 1

// HeaderSize is the fixed wire header length in bytes.
const HeaderSize = 8

// Header is the fixed 8-byte frame header.
type Header struct {
	Size    uint32
	Type    uint8
	Flags   uint8
	Latency uint16
}

// Marshal encodes h into an 8-byte little-endian buffer.
func (h Header) Marshal() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Size)
	buf[4] = h.Type
	buf[5] = h.Flags
	binary.LittleEndian.PutUint16(buf[6:8], h.Latency)
	return buf
}

// UnmarshalHeader decodes an 8-byte buffer into a Header.
func UnmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.New("wire: short header buffer")
	}
	return Header{
		Size:    binary.LittleEndian.Uint32(buf[0:4]),
		Type:    buf[4],
		Flags:   buf[5],
		Latency: binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// WriteFrame writes header and payload as one vectored write, retrying on
// EINTR and advancing across partial writes. EPIPE is reported as a
// streamerr.Io error wrapping streamerr.ErrBrokenPipe so the orchestrator
// can treat it as a clean per-session termination.
func WriteFrame(fd int, h Header, payload []byte) error {
	hdr := h.Marshal()
	iovs := [][]byte{hdr[:], payload}

	for {
		n, err := writevOnce(fd, iovs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EPIPE) {
				return streamerr.New(streamerr.Io, "wire", streamerr.ErrBrokenPipe)
			}
			return streamerr.New(streamerr.Io, "wire", err)
		}
		iovs = advance(iovs, n)
		if len(iovs) == 0 {
			return nil
		}
	}
}

func writevOnce(fd int, iovs [][]byte) (int, error) {
	raw := make([][]byte, 0, len(iovs))
	for _, b := range iovs {
		if len(b) > 0 {
			raw = append(raw, b)
		}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return unix.Writev(fd, raw)
}

// advance drops n bytes from the front of the iovec list, returning the
// remainder still to be written.
func advance(iovs [][]byte, n int) [][]byte {
	out := make([][]byte, 0, len(iovs))
	for _, b := range iovs {
		if n >= len(b) {
			n -= len(b)
			continue
		}
		out = append(out, b[n:])
		n = 0
	}
	return out
}

// ReadHeader reads exactly one 8-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return UnmarshalHeader(buf[:])
}
