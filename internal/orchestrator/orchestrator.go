// Package orchestrator is the server's wiring layer: it owns every process-wide
// resource (GPU context, optional audio source, reactor, server socket),
// accepts a single TCP client, wires capture/convert/encode/input into
// that client's session, and tears the session down atomically on any
// fatal per-session error without touching the process-wide resources.
package orchestrator

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/zsiec/deskstream/internal/audio"
	"github.com/zsiec/deskstream/internal/capture"
	"github.com/zsiec/deskstream/internal/codec"
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/perf"
	"github.com/zsiec/deskstream/internal/reactor"
	"github.com/zsiec/deskstream/internal/streamerr"
	"github.com/zsiec/deskstream/internal/uhid"
	"github.com/zsiec/deskstream/internal/wire"
)

// CaptureFactory builds a fresh capture source for a new session, wired to
// invoke onFrame once per tick.
type CaptureFactory func(onFrame capture.OnFrameReady) (capture.Source, error)

// EncoderFactory builds the per-session HEVC encoder once the capture
// source's first frame reveals the framebuffer's dimensions.
type EncoderFactory func(width, height uint32) (*codec.Encoder, error)

// UHIDFactory opens the kernel-facing side of the input injector for a
// new session. Not called when --disable-uhid is set.
type UHIDFactory func() (uhid.Device, error)

// Config is the orchestrator's process-wide configuration, parsed from
// the CLI.
type Config struct {
	Port          int
	DisableUHID   bool
	AudioHello    string // the hello MISC payload, sans trailing NUL; empty if audio is disabled
	ReadBufferLen int    // defaults to 64KiB when zero
}

// Orchestrator is the single process-wide server instance.
type Orchestrator struct {
	log      *slog.Logger
	cfg      Config
	gpu      *gpu.Context
	audioSrc *audio.Source

	captureFactory CaptureFactory
	encoderFactory EncoderFactory
	uhidFactory    UHIDFactory

	reactor  *reactor.Reactor
	serverFD int
	wakeR    int
	wakeW    int

	shutdown atomic.Bool
	session  *clientSession
}

// clientSession is the set {client_fd, input_injector, capture_source,
// encoder}, destroyed as one atomic unit on any fatal error.
type clientSession struct {
	clientFD int
	injector *uhid.Injector
	capSrc   capture.Source
	encoder  *codec.Encoder
	encImage *gpu.Image

	convertTiming *perf.TimingStats
	encodeTiming  *perf.TimingStats

	drop atomic.Bool
}

// New binds and listens on cfg.Port, creates the shutdown wake pipe and
// its reactor registration, and registers the accept and (if present)
// audio-events handlers. Bind/listen failure is fatal at startup.
func New(log *slog.Logger, cfg Config, gpuCtx *gpu.Context, audioSrc *audio.Source,
	captureFactory CaptureFactory, encoderFactory EncoderFactory, uhidFactory UHIDFactory) (*Orchestrator, error) {

	r, err := reactor.New()
	if err != nil {
		return nil, streamerr.New(streamerr.Io, "orchestrator", err)
	}

	serverFD, err := listenTCP(cfg.Port)
	if err != nil {
		r.Close()
		return nil, streamerr.New(streamerr.Io, "orchestrator", err)
	}

	var wakeFDs [2]int
	if err := unix.Pipe2(wakeFDs[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		unix.Close(serverFD)
		r.Close()
		return nil, streamerr.New(streamerr.Io, "orchestrator", err)
	}

	o := &Orchestrator{
		log:            log,
		cfg:            cfg,
		gpu:            gpuCtx,
		audioSrc:       audioSrc,
		captureFactory: captureFactory,
		encoderFactory: encoderFactory,
		uhidFactory:    uhidFactory,
		reactor:        r,
		serverFD:       serverFD,
		wakeR:          wakeFDs[0],
		wakeW:          wakeFDs[1],
	}

	if err := o.reactor.On(o.wakeR, func(any) { o.handleWake() }, nil); err != nil {
		o.Close()
		return nil, streamerr.New(streamerr.Io, "orchestrator", err)
	}
	o.registerAccept()
	if o.audioSrc != nil {
		o.registerAudioEvents()
	}
	return o, nil
}

func listenTCP(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// Run drives the reactor until RequestShutdown is called (or signalled via
// the wake pipe), destroying the live session between iterations whenever
// its drop flag was set mid-callback.
func (o *Orchestrator) Run() error {
	for !o.shutdown.Load() {
		if err := o.reactor.Iterate(-1); err != nil {
			if errors.Is(err, reactor.ErrInterrupted) {
				continue
			}
			return err
		}
		if o.session != nil && o.session.drop.Load() {
			o.destroySession()
		}
	}
	return nil
}

// RequestShutdown sets the shutdown flag and wakes the reactor out of its
// indefinite wait. Safe to call from a signal handler goroutine.
func (o *Orchestrator) RequestShutdown() {
	o.shutdown.Store(true)
	var b [1]byte
	unix.Write(o.wakeW, b[:])
}

func (o *Orchestrator) handleWake() {
	var buf [16]byte
	unix.Read(o.wakeR, buf[:])
}

// Close tears down any live session and every process-wide resource:
// server socket, reactor, GPU context, audio source.
func (o *Orchestrator) Close() {
	if o.session != nil {
		o.destroySession()
	}
	unix.Close(o.serverFD)
	unix.Close(o.wakeR)
	unix.Close(o.wakeW)
	if o.audioSrc != nil {
		o.audioSrc.Close()
	}
	if o.gpu != nil {
		o.gpu.Close()
	}
	o.reactor.Close()
}

func (o *Orchestrator) registerAccept() {
	if err := o.reactor.On(o.serverFD, func(any) { o.handleAccept() }, nil); err != nil {
		o.log.Error("failed to rearm accept", "component", "orchestrator", "error", err)
	}
}

func (o *Orchestrator) handleAccept() {
	defer o.registerAccept()

	clientFD, _, err := unix.Accept4(o.serverFD, unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK)
	if err != nil {
		if !errors.Is(err, unix.EAGAIN) {
			o.log.Error("accept failed", "component", "orchestrator", "error", err)
		}
		return
	}

	// Single-client server: a second connection while one is live is
	// closed immediately, and no session state is mutated.
	if o.session != nil {
		unix.Close(clientFD)
		return
	}

	if err := o.acceptClient(clientFD); err != nil {
		o.log.Error("failed to start session", "component", "orchestrator", "error", err)
		if o.session != nil {
			o.destroySession() // also closes clientFD
		} else {
			unix.Close(clientFD)
		}
	}
}

func (o *Orchestrator) acceptClient(clientFD int) error {
	if err := unix.SetsockoptInt(clientFD, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return streamerr.New(streamerr.Io, "orchestrator", err)
	}

	sess := &clientSession{
		clientFD:      clientFD,
		convertTiming: perf.NewTimingStats(),
		encodeTiming:  perf.NewTimingStats(),
	}

	if !o.cfg.DisableUHID {
		dev, err := o.uhidFactory()
		if err != nil {
			return streamerr.New(streamerr.Io, "orchestrator", err)
		}
		sess.injector = uhid.New(dev)
	}

	capSrc, err := o.captureFactory(func(frame *gpu.Image) { o.onFrameReady(sess, frame) })
	if err != nil {
		return streamerr.New(streamerr.Gpu, "orchestrator", err)
	}
	sess.capSrc = capSrc

	o.session = sess
	o.registerClientRead(sess)
	if sess.injector != nil {
		o.registerInjectorEvents(sess)
	}
	o.registerCaptureEvents(sess)

	return o.sendHello(clientFD)
}

func (o *Orchestrator) sendHello(clientFD int) error {
	payload := append([]byte(o.cfg.AudioHello), 0)
	return wire.WriteFrame(clientFD, wire.Header{
		Size:    uint32(len(payload)),
		Type:    wire.TypeMisc,
		Flags:   wire.Keyframe,
		Latency: 0,
	}, payload)
}

// onFrameReady is the per-tick capture callback. It never
// tears the session down itself (the capture library may still be inside
// a callback frame); it only sets the drop flag the main loop observes
// after the current reactor iteration.
func (o *Orchestrator) onFrameReady(sess *clientSession, frame *gpu.Image) {
	start := time.Now()

	if sess.encoder == nil {
		enc, err := o.encoderFactory(frame.Width, frame.Height)
		if err != nil {
			o.log.Error("encoder creation failed", "component", "orchestrator", "error", err)
			sess.drop.Store(true)
			return
		}
		w, h, fourcc, planes, err := enc.InputImagePlanes()
		if err != nil {
			o.log.Error("encoder surface export failed", "component", "orchestrator", "error", err)
			enc.Close()
			sess.drop.Store(true)
			return
		}
		img, err := o.gpu.ImportDmabufImage(w, h, fourcc, planes)
		if err != nil {
			o.log.Error("encoder surface import failed", "component", "orchestrator", "error", err)
			enc.Close()
			sess.drop.Store(true)
			return
		}
		sess.encoder = enc
		sess.encImage = img
	}

	if err := o.gpu.Convert(frame, sess.encImage); err != nil {
		o.log.Error("gpu convert failed", "component", "orchestrator", "error", err)
		sess.drop.Store(true)
		return
	}
	converted := time.Now()
	sess.convertTiming.Record(converted.Sub(start))

	if err := sess.encoder.EncodeFrame(sess.clientFD, start); err != nil {
		if !streamerr.IsPipe(err) {
			o.log.Error("encode failed", "component", "orchestrator", "error", err)
		}
		sess.drop.Store(true)
		return
	}
	sess.encodeTiming.Record(time.Since(converted))

	if sess.encoder.FrameCounter()%codec.IntraIDRPeriod == 0 {
		sess.convertTiming.Log(o.log, "convert")
		sess.encodeTiming.Log(o.log, "encode")
	}
}

func (o *Orchestrator) registerClientRead(sess *clientSession) {
	o.reactor.On(sess.clientFD, func(any) { o.handleClientRead(sess) }, nil)
}

func (o *Orchestrator) readBufferLen() int {
	if o.cfg.ReadBufferLen > 0 {
		return o.cfg.ReadBufferLen
	}
	return 64 * 1024
}

func (o *Orchestrator) handleClientRead(sess *clientSession) {
	buf := make([]byte, o.readBufferLen())
	n, err := unix.Read(sess.clientFD, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			o.registerClientRead(sess)
			return
		}
		o.log.Error("client read failed", "component", "orchestrator", "error", err)
		sess.drop.Store(true)
		return
	}
	if n == 0 {
		sess.drop.Store(true)
		return
	}
	if sess.injector != nil {
		if err := sess.injector.Feed(buf[:n]); err != nil {
			o.log.Error("uhid injection failed", "component", "orchestrator", "error", err)
			sess.drop.Store(true)
			return
		}
	}
	o.registerClientRead(sess)
}

func (o *Orchestrator) registerInjectorEvents(sess *clientSession) {
	o.reactor.On(sess.injector.EventsFD(), func(any) { o.handleInjectorEvents(sess) }, nil)
}

// handleInjectorEvents drains and discards UHID-originated events (report
// requests, etc.).
func (o *Orchestrator) handleInjectorEvents(sess *clientSession) {
	var buf [256]byte
	for {
		n, err := unix.Read(sess.injector.EventsFD(), buf[:])
		if err != nil || n <= 0 {
			break
		}
	}
	o.registerInjectorEvents(sess)
}

func (o *Orchestrator) registerCaptureEvents(sess *clientSession) {
	o.reactor.On(sess.capSrc.EventsFD(), func(any) { o.handleCaptureEvents(sess) }, nil)
}

func (o *Orchestrator) handleCaptureEvents(sess *clientSession) {
	if err := sess.capSrc.ProcessEvents(); err != nil {
		o.log.Error("capture source failed", "component", "orchestrator", "error", err)
		sess.drop.Store(true)
		return
	}
	o.registerCaptureEvents(sess)
}

// registerAudioEvents (re-)arms the process-wide audio source's waker fd.
// Audio is process-wide and outlives sessions, so a failure here logs and
// stops audio delivery rather than tearing down any live session or the
// process.
func (o *Orchestrator) registerAudioEvents() {
	o.reactor.On(o.audioSrc.EventsFD(), func(any) { o.handleAudioEvents() }, nil)
}

func (o *Orchestrator) handleAudioEvents() {
	err := o.audioSrc.ProcessEvents(func(data []byte, latencyUs uint64) {
		if o.session == nil || o.session.drop.Load() {
			return
		}
		if err := wire.WriteFrame(o.session.clientFD, wire.Header{
			Size:    uint32(len(data)),
			Type:    wire.TypeAudio,
			Flags:   0,
			Latency: uint16(latencyUs / 1000),
		}, data); err != nil {
			if !streamerr.IsPipe(err) {
				o.log.Error("audio write failed", "component", "orchestrator", "error", err)
			}
			o.session.drop.Store(true)
		}
	})
	if err != nil {
		o.log.Error("audio source stopped", "component", "orchestrator", "error", err)
		return // process-wide resource; do not re-register, do not shut down
	}
	o.registerAudioEvents()
}

// destroySession tears the session down synchronously: forget every
// session-owned fd registration, destroy the capture source (joining any
// owned background thread), close the encoder's GPU image, destroy the
// encoder (which tears down its codec session), close the client fd, and
// drop the injector.
func (o *Orchestrator) destroySession() {
	sess := o.session
	o.session = nil

	sess.convertTiming.Log(o.log, "convert")
	sess.encodeTiming.Log(o.log, "encode")

	o.reactor.Forget(sess.clientFD)
	if sess.injector != nil {
		o.reactor.Forget(sess.injector.EventsFD())
	}
	if sess.capSrc != nil {
		o.reactor.Forget(sess.capSrc.EventsFD())
		if err := sess.capSrc.Close(); err != nil {
			o.log.Error("capture source close failed", "component", "orchestrator", "error", err)
		}
	}
	if sess.encoder != nil {
		if sess.encImage != nil {
			if err := o.gpu.CloseImage(sess.encImage); err != nil {
				o.log.Error("encoder image close failed", "component", "orchestrator", "error", err)
			}
		}
		if err := sess.encoder.Close(); err != nil {
			o.log.Error("encoder close failed", "component", "orchestrator", "error", err)
		}
	}
	unix.Close(sess.clientFD)
}
