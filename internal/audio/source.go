package audio

import (
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/zsiec/deskstream/internal/queue"
	"github.com/zsiec/deskstream/internal/streamerr"
)

// Capture is the library-owned real-time audio thread this system does not
// implement itself (PipeWire or equivalent is an external collaborator);
// it invokes onBlock from its own thread once per captured period.
type Capture interface {
	// Start begins calling onBlock(data) from a background thread until
	// Stop is called or onBlock's caller reports a fatal error.
	Start(onBlock func(data []byte)) error
	Stop()
}

// Source is the audio capture front end: it owns the waker pipe and buffer
// queue that marshal captured blocks from Capture's thread back to the
// main loop.
type Source struct {
	cfg     Config
	capture Capture
	queue   *queue.Queue
	waker   [2]int

	// failed is set from the capture thread and read from the main
	// thread; once set, every subsequent ProcessEvents returns the fatal
	// error without consuming waker bytes.
	failed atomic.Bool
}

const (
	wakerOK  = 0
	wakerErr = 1
)

// New creates a Source for the given config, wiring capture's callback to
// push into the queue and signal the waker pipe.
func New(cfg Config, capture Capture) (*Source, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, streamerr.New(streamerr.Io, "audio", err)
	}
	s := &Source{cfg: cfg, capture: capture, queue: queue.New(), waker: fds}

	err := capture.Start(func(data []byte) {
		item := make([]byte, len(data))
		copy(item, data)
		s.queue.Push(&queue.Item{Data: item})
		s.signal(wakerOK)
	})
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, streamerr.New(streamerr.Io, "audio", err)
	}
	return s, nil
}

func (s *Source) signal(status byte) {
	_, _ = unix.Write(s.waker[1], []byte{status})
}

// Fail marks the capture thread as having stopped with an error. Called
// from the capture thread; the main loop observes it on the next
// ProcessEvents.
func (s *Source) Fail() {
	s.failed.Store(true)
	s.signal(wakerErr)
}

// EventsFD returns the waker pipe's read end for reactor registration.
func (s *Source) EventsFD() int { return s.waker[0] }

// ProcessEvents reads one status byte from the waker pipe and, if OK,
// drains the queue, invoking onReady for each item with a latency
// estimate in microseconds. Returns an Io error if the capture thread
// signaled a fatal failure.
func (s *Source) ProcessEvents(onReady func(data []byte, latencyUs uint64)) error {
	if s.failed.Load() {
		return streamerr.Newf(streamerr.Io, "audio", "capture thread stopped")
	}
	var status [1]byte
	if _, err := unix.Read(s.waker[0], status[:]); err != nil {
		return streamerr.New(streamerr.Io, "audio", err)
	}
	if status[0] == wakerErr {
		return streamerr.Newf(streamerr.Io, "audio", "capture thread stopped")
	}

	oneSec := s.cfg.OneSecondSize()
	for {
		item := s.queue.Pop()
		if item == nil {
			return nil
		}
		latencyUs := uint64(len(item.Data)) * 1_000_000 / uint64(oneSec)
		onReady(item.Data, latencyUs)
	}
}

// Close stops the capture thread and releases the waker pipe.
func (s *Source) Close() {
	s.capture.Stop()
	unix.Close(s.waker[0])
	unix.Close(s.waker[1])
}
