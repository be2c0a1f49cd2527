/*
NAME
  main.go

DESCRIPTION
  dabrx is a command-line DAB/DAB+ receiver: it wires a raw IQ sample file
  (or, in principle, any pipeline/config.SampleSource) into a
  pipeline.Receiver and logs every event the receiver produces. Real SDR
  device drivers, the HTTP map server and any GUI are deliberately out of
  scope (spec §1's Non-goals); the raw-IQ file loader below is the minimal
  test-fixture loader the Non-goals section explicitly carves out.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dabrx is the CLI entry point for the DAB/DAB+ receiver pipeline.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/ausocean/dab/pipeline"
	"github.com/ausocean/dab/pipeline/config"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging configuration, matching the teacher's cmd/* convention.
const (
	logPath      = "/var/log/dabrx/dabrx.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Exit codes, per spec §6: 0 clean shutdown, 1 init failure (no device),
// 2 fatal protocol assertion violation.
const (
	exitClean    = 0
	exitNoDevice = 1
	exitFatal    = 2
)

func main() {
	iqPath := flag.String("iq", "", "path to a raw IQ sample file (interleaved little-endian float32 I/Q pairs)")
	sampleRate := flag.Float64("rate", 2048000, "IQ sample rate in Hz")
	audioLabel := flag.String("audio", "", "service label to select for audio playback on startup")
	packetLabel := flag.String("packet", "", "service label to select for packet-mode data on startup")
	scan := flag.Bool("scan", false, "start in scan mode (inhibits service enrollment)")
	logFile := flag.String("log", logPath, "log file path")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   *logFile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, fileLog, logSuppress)

	if *iqPath == "" {
		log.Error("no -iq sample file given")
		os.Exit(exitNoDevice)
	}

	src, err := newFileSampleSource(*iqPath)
	if err != nil {
		log.Error("could not open IQ source", "path", *iqPath, "error", err.Error())
		os.Exit(exitNoDevice)
	}
	defer src.Close()

	cfg := config.NewDefault(log)
	cfg.ScanMode = *scan

	rx, err := pipeline.New(cfg, src, *sampleRate)
	if err != nil {
		log.Error("could not initialise receiver", "error", err.Error())
		os.Exit(exitNoDevice)
	}

	if *audioLabel != "" {
		if err := rx.SelectAudio(*audioLabel, pipeline.RolePrimary); err != nil {
			log.Error("could not select audio service", "label", *audioLabel, "error", err.Error())
		}
	}
	if *packetLabel != "" {
		if err := rx.SelectPacket(*packetLabel, pipeline.RolePrimary); err != nil {
			log.Error("could not select packet service", "label", *packetLabel, "error", err.Error())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, rx, log))
}

// run starts the receiver and logs every event until the receiver signals
// it has stopped (clean shutdown or permanent source error) or ctx is
// canceled. A panic surfacing from the decode chain is treated as the
// fatal protocol assertion violation of spec §6 and mapped to exitFatal.
func run(ctx context.Context, rx *pipeline.Receiver, log logging.Logger) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("fatal protocol assertion violation", "panic", fmt.Sprint(r))
			code = exitFatal
		}
	}()

	if err := rx.Start(ctx); err != nil {
		log.Error("could not start receiver", "error", err.Error())
		return exitNoDevice
	}

	for e := range rx.Events() {
		logEvent(log, e)
		if e.Kind == pipeline.EventNoSignal {
			rx.Stop()
			return exitClean
		}
	}
	return exitClean
}

func logEvent(log logging.Logger, e pipeline.Event) {
	switch e.Kind {
	case pipeline.EventNewAudio:
		log.Debug("audio", "subChId", e.Audio.SubChId, "samples", len(e.Audio.Samples), "rate", e.Audio.Rate)
	case pipeline.EventNewDataGroup:
		log.Debug("data group", "subChId", e.Data.SubChId, "kind", e.Data.Kind, "bytes", len(e.Data.Data))
	case pipeline.EventMotObject:
		log.Info("mot object", "transportId", e.Mot.TransportId, "name", e.Mot.Name)
	case pipeline.EventFibLoaded:
		log.Debug("fib loaded")
	case pipeline.EventNoSignal:
		log.Info("no signal, stopping")
	case pipeline.EventTii:
		log.Info("tii detected", "count", len(e.Tii))
	case pipeline.EventServiceAdded:
		log.Info("service added", "sid", e.Service.SId, "label", e.Service.Label)
	case pipeline.EventConfigurationChanged:
		log.Info("configuration changed")
	}
}

// fileSampleSource implements sdr.SampleSource by reading interleaved
// little-endian float32 I/Q pairs from a file, the minimal test-fixture IQ
// loader spec §1's Non-goals carve out of the device-driver scope.
type fileSampleSource struct {
	f *os.File
}

func newFileSampleSource(path string) (*fileSampleSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dabrx: %w", err)
	}
	return &fileSampleSource{f: f}, nil
}

func (s *fileSampleSource) Close() error { return s.f.Close() }

// Pull reads n complex64 samples (n*8 bytes) from the file. It returns
// io.EOF once the file is exhausted, which the receive loop treats as a
// clean end-of-source shutdown.
func (s *fileSampleSource) Pull(ctx context.Context, n int) ([]complex64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, n*8)
	nRead, err := io.ReadFull(s.f, buf)
	if nRead == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	samples := make([]complex64, nRead/8)
	for i := range samples {
		re := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:]))
		samples[i] = complex(re, im)
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return samples, err
}
