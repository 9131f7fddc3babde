// Command deskstreamd is the process entry point for the desktop
// streaming server: it parses `<port> [--disable-uhid]
// [--audio <rate>:<channel_map>]`, wires the pipeline together through
// internal/platform's real and stubbed drivers, and runs the reactor
// loop until SIGINT/SIGTERM.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/deskstream/internal/audio"
	"github.com/zsiec/deskstream/internal/capture"
	"github.com/zsiec/deskstream/internal/capture/kms"
	"github.com/zsiec/deskstream/internal/capture/wayland"
	"github.com/zsiec/deskstream/internal/codec"
	"github.com/zsiec/deskstream/internal/gpu"
	"github.com/zsiec/deskstream/internal/orchestrator"
	"github.com/zsiec/deskstream/internal/platform"
	"github.com/zsiec/deskstream/internal/uhid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type cliConfig struct {
	port        int
	disableUHID bool
	audioCfg    string // "" if --audio was not given
}

func parseCLI(args []string) (cliConfig, error) {
	var cfg cliConfig
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--disable-uhid":
			cfg.disableUHID = true
		case "--audio":
			if i+1 >= len(args) {
				return cliConfig{}, errors.New("--audio requires an argument")
			}
			i++
			cfg.audioCfg = args[i]
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) != 1 {
		return cliConfig{}, fmt.Errorf("usage: deskstreamd <port> [--disable-uhid] [--audio <rate>:<channel_map>]")
	}
	port, err := strconv.Atoi(positional[0])
	if err != nil {
		return cliConfig{}, fmt.Errorf("invalid port %q: %w", positional[0], err)
	}
	cfg.port = port
	return cfg, nil
}

func run() error {
	level := slog.LevelInfo
	if os.Getenv("DESKSTREAM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	signal.Ignore(syscall.SIGPIPE)

	cli, err := parseCLI(os.Args[1:])
	if err != nil {
		return err
	}

	var audioCfg audio.Config
	helloPayload := ""
	if cli.audioCfg != "" {
		audioCfg, err = audio.ParseConfig(cli.audioCfg)
		if err != nil {
			return err
		}
		helloPayload = audioCfg.String()
	}

	// The GPU context and the audio source are both process-wide startup
	// resources with no dependency on each other; bring them up
	// concurrently.
	var glesDriver *platform.GLESDriver
	var gpuCtx *gpu.Context
	var audioSrc *audio.Source

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		glesDriver, err = platform.OpenGLESDriver(platform.RenderNodePath)
		if err != nil {
			return fmt.Errorf("open render node: %w", err)
		}
		gpuCtx, err = gpu.NewContext(glesDriver, gpu.ItuRec709, gpu.NarrowRange)
		if err != nil {
			return fmt.Errorf("create gpu context: %w", err)
		}
		return nil
	})
	if cli.audioCfg != "" {
		g.Go(func() error {
			var err error
			audioSrc, err = audio.New(audioCfg, platform.NewPipeWireCapture())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if audioSrc != nil {
		defer audioSrc.Close()
	}

	colorspace := codec.Colorspace{
		FullRange:               false,
		ColourPrimaries:         1, // BT.709
		TransferCharacteristics: 1,
		MatrixCoeffs:            1,
	}

	captureFactory := func(onFrame capture.OnFrameReady) (capture.Source, error) {
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			portal, err := wayland.NewDBusPortal()
			if err != nil {
				return nil, err
			}
			return wayland.New(portal, gpuCtx, onFrame)
		}
		return kms.New(platform.NewDRMCard(), gpuCtx, onFrame)
	}

	encoderFactory := func(width, height uint32) (*codec.Encoder, error) {
		return codec.New(platform.NewVAAPIDriver(), width, height, colorspace)
	}

	uhidFactory := func() (uhid.Device, error) {
		return platform.OpenUHIDDevice("/dev/uhid")
	}

	orch, err := orchestrator.New(log, orchestrator.Config{
		Port:        cli.port,
		DisableUHID: cli.disableUHID,
		AudioHello:  helloPayload,
	}, gpuCtx, audioSrc, captureFactory, encoderFactory, uhidFactory)
	if err != nil {
		return err
	}
	defer orch.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		orch.RequestShutdown()
	}()

	log.Info("deskstreamd starting", "port", cli.port, "disable_uhid", cli.disableUHID, "audio", cli.audioCfg != "")
	return orch.Run()
}
