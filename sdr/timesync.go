/*
NAME
  timesync.go

DESCRIPTION
  timesync.go implements the Time Synchronizer: it finds the NULL symbol
  (a ~1.3ms gap of near-zero energy at the start of every transmission
  frame) in a rolling window of samples, establishing the frame boundary
  the OFDM demodulator and phase reference correlator anchor to, per
  spec §4.2.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sdr

import "math/cmplx"

// Mode I timing constants in samples, at the nominal 2.048 MHz DAB sample
// rate: T_null (NULL symbol), T_u (useful OFDM symbol) and T_g (guard
// interval).
const (
	TNull = 2656
	TU    = 2048
	TG    = 504
	TS    = TU + TG // one full OFDM symbol period
)

// TimeSyncer locates the NULL symbol in a stream of samples using an
// energy-ratio detector: the mean power of a sliding TNull-sample window
// against the mean power of the TU-sample window immediately following it.
type TimeSyncer struct {
	threshold float64 // ratio below which a window is considered the NULL gap
}

// NewTimeSyncer returns a TimeSyncer using the given energy-ratio
// threshold (the "threshold" config entry of spec §6).
func NewTimeSyncer(threshold float64) *TimeSyncer {
	if threshold <= 0 {
		threshold = 0.2
	}
	return &TimeSyncer{threshold: threshold}
}

// FindNull scans samples for the start of a NULL symbol, returning its
// offset and true if found. samples must contain at least TNull+TU
// samples to make a reliable decision.
func (t *TimeSyncer) FindNull(samples []complex64) (offset int, ok bool) {
	if len(samples) < TNull+TU {
		return 0, false
	}
	best := -1
	bestRatio := t.threshold
	for off := 0; off+TNull+TU <= len(samples); off++ {
		nullPower := meanPower(samples[off : off+TNull])
		refPower := meanPower(samples[off+TNull : off+TNull+TU])
		if refPower == 0 {
			continue
		}
		ratio := nullPower / refPower
		if ratio < bestRatio {
			bestRatio = ratio
			best = off
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func meanPower(s []complex64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		m := cmplx.Abs(complex128(v))
		sum += m * m
	}
	return sum / float64(len(s))
}
