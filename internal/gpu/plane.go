package gpu

import "golang.org/x/sys/unix"

// Plane is one dmabuf plane descriptor: a move-only handle over an owned
// dmabuf fd. Ownership passes in at construction and is released at Close
// unless duplicated.
type Plane struct {
	fd       int
	Pitch    uint32
	Offset   uint32
	Modifier uint64
	closed   bool
}

// NewPlane takes ownership of fd.
func NewPlane(fd int, pitch, offset uint32, modifier uint64) Plane {
	return Plane{fd: fd, Pitch: pitch, Offset: offset, Modifier: modifier}
}

// Dup returns a new Plane owning a duplicate of the underlying fd, leaving
// the receiver's ownership untouched.
func (p Plane) Dup() (Plane, error) {
	fd, err := unix.FcntlInt(uintptr(p.fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return Plane{}, err
	}
	return Plane{fd: int(fd), Pitch: p.Pitch, Offset: p.Offset, Modifier: p.Modifier}, nil
}

// Fd returns the owned fd. Do not close it directly; call Close instead.
func (p Plane) Fd() int { return p.fd }

// Close releases the owned fd. Safe to call once; a second call is a
// no-op.
func (p *Plane) Close() error {
	if p.closed || p.fd < 0 {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

// Image is an immutable set of up to four planes plus driver-side handles,
// produced once per tick by a capture source or owned persistently by an
// encoder surface set.
type Image struct {
	Width, Height uint32
	Fourcc        uint32
	Planes        []Plane

	// driverHandle is the imported-image handle plus per-plane texture
	// handles; opaque to everything outside this package's Driver
	// implementation.
	driverHandle any
}

// Close releases every owned plane and any driver-side objects, in
// reverse creation order.
func (img *Image) Close(d Driver) error {
	var firstErr error
	if img.driverHandle != nil {
		if err := d.ReleaseImage(img.driverHandle); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := len(img.Planes) - 1; i >= 0; i-- {
		if err := img.Planes[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
