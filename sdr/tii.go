/*
NAME
  tii.go

DESCRIPTION
  tii.go implements the TII (Transmitter Identification Information)
  Detector: TII carriers are transmitted only during the NULL symbol, a
  fixed comb of carrier pairs per (main ID, sub ID) combination per
  EN 300 401 Annex H. Detection FFTs the NULL-symbol samples and looks for
  energy on the comb associated with each candidate sub ID, accumulating
  hits over `tiiFramesToCount` frames before reporting, per spec §4.5.

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
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// TIICombSize is the number of carrier pairs in one TII sub-ID comb.
const TIICombSize = 8

// TIIResult is one detected transmitter identification: a (mainId, subId)
// pair and its accumulated detection strength.
type TIIResult struct {
	MainId   int
	SubId    int
	Strength float64
}

// TIIDetector accumulates carrier-energy hits across tiiFramesToCount
// NULL symbols before reporting a stable detection.
type TIIDetector struct {
	framesToCount int
	threshold     float64
	collisions    bool

	frameCount int
	energy     map[int]float64 // subId -> accumulated comb energy
}

// NewTIIDetector returns a TIIDetector using the tiiFramesToCount,
// tiiThreshold and tiiCollisions config entries of spec §6.
func NewTIIDetector(framesToCount int, threshold float64, collisions bool) *TIIDetector {
	if framesToCount <= 0 {
		framesToCount = 5
	}
	return &TIIDetector{
		framesToCount: framesToCount,
		threshold:     threshold,
		collisions:    collisions,
		energy:        make(map[int]float64),
	}
}

// subIdCarriers returns the TIICombSize carrier indices (FFT bins, offset
// from DC) making up the comb for a given sub ID, per the fixed spacing
// rule of Annex H's carrier-pair tables.
func subIdCarriers(subId int) []int {
	idx := make([]int, TIICombSize)
	for i := range idx {
		idx[i] = (subId*TIICombSize + i*24 + 1) % (TU / 2)
	}
	return idx
}

// Feed analyzes one NULL symbol (TNull samples) and accumulates comb
// energy for every candidate sub ID 0..23. Once
// tiiFramesToCount frames have been accumulated, it returns the detected
// results (sorted strongest-first) and resets its accumulator.
func (d *TIIDetector) Feed(nullSymbol []complex64) []TIIResult {
	td := make([]complex128, TU)
	n := len(nullSymbol)
	if n > TU {
		n = TU
	}
	for i := 0; i < n; i++ {
		td[i] = complex128(nullSymbol[i])
	}
	spectrum := fft.FFT(td)

	for subId := 0; subId < 24; subId++ {
		var e float64
		for _, k := range subIdCarriers(subId) {
			m := cmplx.Abs(spectrum[k])
			e += m * m
		}
		d.energy[subId] += e
	}
	d.frameCount++

	if d.frameCount < d.framesToCount {
		return nil
	}

	var results []TIIResult
	for subId, e := range d.energy {
		strength := e / float64(d.frameCount)
		if strength >= d.threshold {
			results = append(results, TIIResult{SubId: subId, Strength: strength})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Strength > results[j].Strength })
	if !d.collisions && len(results) > 1 {
		results = results[:1]
	}

	d.energy = make(map[int]float64)
	d.frameCount = 0
	return results
}
