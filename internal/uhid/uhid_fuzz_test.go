package uhid

import (
	"encoding/binary"
	"testing"
)

// nullDevice accepts every record; the fuzz target only cares that Feed
// never panics and never hands the device a record longer than its input.
type nullDevice struct{ total int }

func (d *nullDevice) Write(record []byte) error {
	d.total += len(record)
	return nil
}
func (d *nullDevice) EventsFD() int { return -1 }

func FuzzFeed(f *testing.F) {
	create2 := make([]byte, create2HeaderSize)
	binary.LittleEndian.PutUint32(create2[:4], TypeCreate2)
	f.Add(create2)

	input2 := make([]byte, input2HeaderSize+4)
	binary.LittleEndian.PutUint32(input2[:4], TypeInput2)
	binary.LittleEndian.PutUint16(input2[4:6], 4)
	f.Add(input2)

	destroy := make([]byte, destroyRecordSize)
	binary.LittleEndian.PutUint32(destroy, TypeDestroy)
	f.Add(destroy)

	f.Add([]byte{})
	f.Add([]byte{11, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		dev := &nullDevice{}
		inj := New(dev)
		// Feed in two arbitrary-split chunks; must not panic, and every
		// byte written must have been fed.
		mid := len(data) / 2
		if err := inj.Feed(data[:mid]); err != nil {
			return
		}
		if err := inj.Feed(data[mid:]); err != nil {
			return
		}
		if dev.total > len(data) {
			t.Fatalf("device received %d bytes from %d fed", dev.total, len(data))
		}
	})
}
