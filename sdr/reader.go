/*
NAME
  reader.go

DESCRIPTION
  reader.go implements the Sample Reader: it pulls complex baseband IQ
  samples from a SampleSource collaborator, applies an optional DC-blocking
  IIR filter and NCO-based VFO mixing, and tracks a running level meter
  (mean magnitude of recent samples) exposed for diagnostics, per
  spec §4.1. The DC blocker keeps its own bias estimate and does not read
  the meter.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sdr implements the signal-chain front end of the DAB/DAB+
// receiver: sample acquisition, NULL-symbol time synchronization, phase
// reference correlation, OFDM demodulation and TII detection.
package sdr

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/stat"
)

// SampleSource is the collaborator a Reader pulls complex baseband samples
// from: an SDR device, a file, or a test fixture.
type SampleSource interface {
	Pull(ctx context.Context, n int) ([]complex64, error)
}

// Reader is the Sample Reader of spec §4.1: DC removal, VFO mixing and
// level metering sit between the raw SampleSource and the Time
// Synchronizer.
type Reader struct {
	src SampleSource
	log logging.Logger

	useDcRemoval bool
	dcI, dcQ     float64 // running DC bias estimate

	vfoHz      float64
	vfoPhase   float64
	sampleRate float64

	levels []float64 // recent sample magnitudes, for the peak meter
}

// NewReader returns a Reader pulling from src at the given sample rate.
func NewReader(src SampleSource, sampleRate float64, log logging.Logger) *Reader {
	return &Reader{src: src, sampleRate: sampleRate, log: log}
}

// SetDCRemoval enables or disables the DC-blocking IIR filter.
func (r *Reader) SetDCRemoval(on bool) { r.useDcRemoval = on }

// SetVFOHz sets the NCO mixing frequency, matching the set_vfo_hz
// control-plane entry of spec §6.
func (r *Reader) SetVFOHz(hz float64) { r.vfoHz = hz }

// ResetBuffer clears the DC bias estimate and level history, matching the
// reset_buffer control-plane entry of spec §6.
func (r *Reader) ResetBuffer() {
	r.dcI, r.dcQ = 0, 0
	r.levels = r.levels[:0]
}

// Pull reads n samples, applying DC removal and VFO mixing, and returns
// ctx.Err() translated for the ReaderStopped shutdown event of spec §5 when
// the context is canceled.
func (r *Reader) Pull(ctx context.Context, n int) ([]complex64, error) {
	raw, err := r.src.Pull(ctx, n)
	if err != nil {
		if ctx.Err() != nil {
			if r.log != nil {
				r.log.Info("sample source stopped", "err", err)
			}
			return nil, ctx.Err()
		}
		return nil, err
	}

	out := make([]complex64, len(raw))
	for i, s := range raw {
		v := complex128(s)
		if r.useDcRemoval {
			v = r.blockDC(v)
		}
		if r.vfoHz != 0 {
			v = r.mix(v)
		}
		out[i] = complex64(v)
		r.levels = append(r.levels, cmplx.Abs(v))
	}
	if len(r.levels) > 4096 {
		r.levels = r.levels[len(r.levels)-4096:]
	}
	return out, nil
}

// blockDC applies a single-pole DC-blocking filter: a slow exponential
// moving average of I/Q is tracked and subtracted from each sample.
func (r *Reader) blockDC(v complex128) complex128 {
	const alpha = 1.0 / 1024
	i, q := real(v), imag(v)
	r.dcI += alpha * (i - r.dcI)
	r.dcQ += alpha * (q - r.dcQ)
	return complex(i-r.dcI, q-r.dcQ)
}

// mix multiplies v by the NCO at the configured VFO offset and advances
// the NCO phase.
func (r *Reader) mix(v complex128) complex128 {
	w := 2 * math.Pi * r.vfoHz / r.sampleRate
	r.vfoPhase += w
	if r.vfoPhase > math.Pi {
		r.vfoPhase -= 2 * math.Pi
	} else if r.vfoPhase < -math.Pi {
		r.vfoPhase += 2 * math.Pi
	}
	return v * cmplx.Exp(complex(0, -r.vfoPhase))
}

// PeakLevel returns the running mean magnitude of recently pulled samples,
// for diagnostics.
func (r *Reader) PeakLevel() float64 {
	if len(r.levels) == 0 {
		return 0
	}
	return stat.Mean(r.levels, nil)
}
