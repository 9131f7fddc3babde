// Package platform wires the abstract GPU, codec, and capture driver
// interfaces against real Linux devices. /dev/uhid is plain file
// I/O and is implemented directly here; the GPU (EGL/GLES), codec
// (VA-API), KMS (DRM ioctl) and PipeWire audio bindings are genuinely
// external (they require cgo against libEGL/libva/libdrm/libpipewire) and
// are left as documented stubs an implementer substitutes with real
// bindings. The Wayland backend lives in internal/capture/wayland.
package platform

import (
	"os"

	"github.com/zsiec/deskstream/internal/streamerr"
)

// UHIDDevice is the real kernel-facing side of the input injector,
// writing complete records to /dev/uhid.
type UHIDDevice struct {
	f *os.File
}

// OpenUHIDDevice opens path (normally "/dev/uhid") for read-write.
func OpenUHIDDevice(path string) (*UHIDDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, streamerr.New(streamerr.Io, "platform/uhid", err)
	}
	return &UHIDDevice{f: f}, nil
}

// Write writes one complete UHID record atomically.
func (d *UHIDDevice) Write(record []byte) error {
	n, err := d.f.Write(record)
	if err != nil {
		return streamerr.New(streamerr.Io, "platform/uhid", err)
	}
	if n != len(record) {
		return streamerr.Newf(streamerr.Io, "platform/uhid", "short write: %d of %d bytes", n, len(record))
	}
	return nil
}

// EventsFD exposes the device fd so the reactor can drain UHID-originated
// events (report requests, etc.), discarded silently by the orchestrator.
func (d *UHIDDevice) EventsFD() int { return int(d.f.Fd()) }

// Close releases the device file.
func (d *UHIDDevice) Close() error { return d.f.Close() }
