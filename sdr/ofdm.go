/*
NAME
  ofdm.go

DESCRIPTION
  ofdm.go implements the OFDM Demodulator: FFT each TU-sample symbol,
  differentially decode each active carrier against the same carrier of
  the previous symbol (DQPSK, per EN 300 401 §14.1), and map the resulting
  complex differential value to a pair of soft bits using one of the three
  SOFTDEC soft-bit formulations of spec §4.4, selected by the configured
  softBitType. SNR is estimated from the spread of constellation points
  around the four ideal QPSK phases using `gonum.org/v1/gonum/stat`.

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

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// ModeIActiveCarriers is the number of active (data-bearing) OFDM carriers
// in Mode I, excluding the DC carrier.
const ModeIActiveCarriers = 1536

// SoftBitFunc maps one differentially-decoded carrier value to a pair of
// signed soft bits (positive leans toward 0, negative toward 1), matching
// the "pure mapping" framing of spec §4.4: it has no state and no side
// effects.
type SoftBitFunc func(v complex128) (b0, b1 int8)

// softDec1 maps the raw real/imaginary parts directly, clamped to int8
// range: the simplest, lowest-latency soft-bit formulation.
func softDec1(v complex128) (b0, b1 int8) {
	return clampSoft(real(v)), clampSoft(imag(v))
}

// softDec2 normalizes by the carrier's magnitude before mapping, trading
// a division per carrier for constellation points of uniform confidence.
func softDec2(v complex128) (b0, b1 int8) {
	m := cmplx.Abs(v)
	if m == 0 {
		return 0, 0
	}
	return clampSoft(real(v) / m * 127), clampSoft(imag(v) / m * 127)
}

// softDec3 applies a soft clipping curve (tanh) to the normalized value,
// compressing low-confidence bits toward zero more aggressively than
// softDec2's linear scaling.
func softDec3(v complex128) (b0, b1 int8) {
	m := cmplx.Abs(v)
	if m == 0 {
		return 0, 0
	}
	nr, ni := real(v)/m, imag(v)/m
	return clampSoft(127 * math.Tanh(2*nr)), clampSoft(127 * math.Tanh(2*ni))
}

func clampSoft(f float64) int8 {
	if f > 127 {
		return 127
	}
	if f < -127 {
		return -127
	}
	return int8(f)
}

// SoftBitFuncs is the strategy table selected by the softBitType config
// entry of spec §6 (1, 2 or 3).
var SoftBitFuncs = map[int]SoftBitFunc{
	1: softDec1,
	2: softDec2,
	3: softDec3,
}

// Demodulator differentially decodes successive OFDM symbols into soft
// bits.
type Demodulator struct {
	prevSpectrum []complex128 // previous symbol's FFT, for differential decode
	soft         SoftBitFunc
}

// NewDemodulator returns a Demodulator using the given soft-bit mapping.
func NewDemodulator(soft SoftBitFunc) *Demodulator {
	if soft == nil {
		soft = softDec2
	}
	return &Demodulator{soft: soft}
}

// activeCarrierIndices returns the FFT bin indices of the ModeIActiveCarriers
// active carriers, centered on DC with the DC bin itself excluded, per
// EN 300 401's Mode I carrier allocation.
func activeCarrierIndices() []int {
	idx := make([]int, 0, ModeIActiveCarriers)
	half := ModeIActiveCarriers / 2
	for k := -half; k <= half; k++ {
		if k == 0 {
			continue
		}
		bin := k
		if bin < 0 {
			bin += TU
		}
		idx = append(idx, bin)
	}
	return idx
}

var carrierIdx = activeCarrierIndices()

// DemodSymbol differentially decodes one TU-sample OFDM symbol (guard
// interval already stripped) against the previous symbol, returning one
// soft-bit pair per active carrier (2*ModeIActiveCarriers soft bits total)
// plus an SNR estimate in dB. The first symbol of a frame (the phase
// reference) should be fed in to seed prevSpectrum without expecting
// meaningful output bits.
func (d *Demodulator) DemodSymbol(symbol []complex64) (bits []int8, snrDB float64) {
	td := make([]complex128, TU)
	for i, s := range symbol {
		td[i] = complex128(s)
	}
	spectrum := fft.FFT(td)

	if d.prevSpectrum == nil {
		d.prevSpectrum = spectrum
		return nil, 0
	}

	bits = make([]int8, 0, 2*len(carrierIdx))
	mags := make([]float64, 0, len(carrierIdx))
	devs := make([]float64, 0, len(carrierIdx))
	for _, k := range carrierIdx {
		diff := spectrum[k] * cmplx.Conj(d.prevSpectrum[k]) / (cmplx.Abs(d.prevSpectrum[k]) + 1e-12)
		b0, b1 := d.soft(diff)
		bits = append(bits, b0, b1)

		m := cmplx.Abs(diff)
		mags = append(mags, m)
		// Deviation from the nearest ideal QPSK phase (pi/4 + k*pi/2).
		ang := cmplx.Phase(diff)
		nearest := math.Round((ang-math.Pi/4)/(math.Pi/2))*(math.Pi/2) + math.Pi/4
		devs = append(devs, ang-nearest)
	}
	d.prevSpectrum = spectrum

	signalPower := stat.Mean(mags, nil)
	signalPower *= signalPower
	noiseVar := stat.Variance(devs, nil)
	if noiseVar <= 0 {
		noiseVar = 1e-9
	}
	snrDB = 10 * math.Log10(signalPower/noiseVar)
	return bits, snrDB
}
