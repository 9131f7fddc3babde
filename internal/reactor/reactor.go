// Package reactor implements the single-threaded, epoll-backed readiness
// multiplexer the orchestrator drives as its main loop. Registrations
// are single-shot: a callback must re-register itself if it wants to keep
// watching its fd.
package reactor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Callback is invoked when its fd becomes ready. user is the opaque value
// passed to On.
type Callback func(user any)

type registration struct {
	cb   Callback
	user any
}

// Reactor owns an epoll instance and the set of pending single-shot
// registrations.
type Reactor struct {
	epfd  int
	byFd  map[int]*registration
}

// New creates an epoll instance.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Reactor{epfd: epfd, byFd: make(map[int]*registration)}, nil
}

// On registers a one-shot readable callback for fd. At most one
// registration exists per fd at a time; calling On again for the same fd
// replaces it.
func (r *Reactor) On(fd int, cb Callback, user any) error {
	reg := &registration{cb: cb, user: user}
	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}

	op := unix.EPOLL_CTL_ADD
	if _, exists := r.byFd[fd]; exists {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, &event); err != nil {
		return err
	}
	r.byFd[fd] = reg
	return nil
}

// Forget removes any pending registration for fd. Safe to call on an fd
// with no registration.
func (r *Reactor) Forget(fd int) {
	if _, ok := r.byFd[fd]; !ok {
		return
	}
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(r.byFd, fd)
}

// ErrInterrupted is returned by Iterate when the wait was interrupted by a
// signal (EINTR). The caller decides whether to re-enter based on the
// process shutdown flag.
var ErrInterrupted = errors.New("reactor: interrupted")

// Iterate waits up to timeoutMs for ready fds (-1 blocks indefinitely),
// removes each fired registration, and invokes its callback. EINTR is
// surfaced to the caller rather than retried internally.
func (r *Reactor) Iterate(timeoutMs int) error {
	events := make([]unix.EpollEvent, 16)
	n, err := unix.EpollWait(r.epfd, events, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return ErrInterrupted
		}
		return err
	}
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		reg, ok := r.byFd[fd]
		if !ok {
			continue
		}
		delete(r.byFd, fd)
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		reg.cb(reg.user)
	}
	return nil
}

// Close releases the epoll instance.
func (r *Reactor) Close() error {
	return unix.Close(r.epfd)
}
