// Package uhid implements the input injector: it reassembles raw,
// unframed UHID records arriving on the client connection and writes each
// complete record atomically to the kernel's /dev/uhid device.
//
// The kernel-side ABI (linux/uhid.h) is an external collaborator. This
// package models only the record-boundary detection (CREATE2 needs its
// rd_size field, INPUT2 its size field, DESTROY is fixed-size) and defers
// the actual device write to the Device interface so it can be faked in
// tests.
package uhid

import (
	"encoding/binary"

	"github.com/zsiec/deskstream/internal/streamerr"
)

// Record type tags, matching linux/uhid.h's uhid_event_type enum values
// this system emits against.
const (
	TypeDestroy uint32 = 1
	TypeCreate2 uint32 = 11
	TypeInput2  uint32 = 12
)

const (
	typeFieldSize = 4
	// Offsets of the length-bearing fields within each record body,
	// relative to the start of the record (type field included).
	create2RDSizeOffset = typeFieldSize + 128 + 64 + 64 // name, phys, uniq
	create2HeaderSize   = create2RDSizeOffset + 2 + 2 + 4 + 4 + 4 + 4
	input2SizeOffset    = typeFieldSize
	input2HeaderSize    = typeFieldSize + 2
	destroyRecordSize   = typeFieldSize
)

// Device is the kernel-facing side of the injector: one atomic write per
// complete UHID record, plus an events fd the reactor drains for
// UHID-originated events (report requests, etc.), which are discarded
// silently by the orchestrator.
type Device interface {
	Write(record []byte) error
	EventsFD() int
}

// Injector reassembles records out of arbitrarily-chunked input and writes
// each complete one to a Device.
type Injector struct {
	dev Device
	buf []byte
}

// New returns an Injector writing complete records to dev.
func New(dev Device) *Injector {
	return &Injector{dev: dev}
}

// Feed appends chunk to the pending buffer and writes out every complete
// record it now contains, discarding consumed bytes. It returns a
// streamerr.Protocol error on a malformed record length.
func (inj *Injector) Feed(chunk []byte) error {
	inj.buf = append(inj.buf, chunk...)

	for {
		n, err := recordLength(inj.buf)
		if err != nil {
			return err
		}
		if n == 0 || len(inj.buf) < n {
			return nil // wait for more data
		}
		if err := inj.dev.Write(inj.buf[:n]); err != nil {
			return streamerr.New(streamerr.Io, "uhid", err)
		}
		inj.buf = append(inj.buf[:0], inj.buf[n:]...)
	}
}

// recordLength returns the full length of the record at the front of buf,
// or 0 if buf does not yet contain enough bytes to determine it.
func recordLength(buf []byte) (int, error) {
	if len(buf) < typeFieldSize {
		return 0, nil
	}
	recType := binary.LittleEndian.Uint32(buf[:typeFieldSize])

	switch recType {
	case TypeDestroy:
		return destroyRecordSize, nil
	case TypeCreate2:
		if len(buf) < create2RDSizeOffset+2 {
			return 0, nil
		}
		rdSize := binary.LittleEndian.Uint16(buf[create2RDSizeOffset : create2RDSizeOffset+2])
		return create2HeaderSize + int(rdSize), nil
	case TypeInput2:
		if len(buf) < input2SizeOffset+2 {
			return 0, nil
		}
		size := binary.LittleEndian.Uint16(buf[input2SizeOffset : input2SizeOffset+2])
		return input2HeaderSize + int(size), nil
	default:
		return 0, streamerr.Newf(streamerr.Protocol, "uhid", "unrecognized record type %d", recType)
	}
}

// EventsFD returns the fd the reactor should watch for UHID-originated
// events.
func (inj *Injector) EventsFD() int {
	return inj.dev.EventsFD()
}
