/*
NAME
  deinterleave.go

DESCRIPTION
  deinterleave.go implements the 16-stage convolutional time deinterleaver
  each subchannel Backend owns: EN 300 401's time interleaver spreads each
  bit across 16 consecutive CIFs using a fixed per-position branch map, so
  the deinterleaver keeps a 16-deep ring of previous CIF slices and, for
  each bit position, reads back (before storing the current slice) the
  slice written 16-MAP[i mod 16] CIFs ago, per spec §4.9.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package msc implements the Main Service Channel: CIF accumulation,
// per-subchannel time deinterleaving, UEP/EEP Viterbi deconvolution and
// dispatch to frame processors.
package msc

// MAP is the fixed 16-entry branch map of spec §4.9.
var MAP = [16]int{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}

// Deinterleaver is one subchannel's 16-deep convolutional time
// deinterleaver. It operates on soft bits (one int8 per coded bit).
type Deinterleaver struct {
	il     [16][]int8 // ring of the last 16 written CIF slices
	idx    int
	warmed int // CIFs consumed so far, capped at 16
}

// NewDeinterleaver returns an empty Deinterleaver.
func NewDeinterleaver() *Deinterleaver {
	return &Deinterleaver{}
}

// Process writes x (one subchannel's slice of the current CIF's soft
// bits) into the ring and returns the deinterleaved fragment, per
// spec §4.9's formula. The first 16 calls return nil: the deinterleaver is
// warming (invariant P4).
func (d *Deinterleaver) Process(x []int8) []int8 {
	n := len(x)

	var y []int8
	if d.warmed >= 16 {
		y = make([]int8, n)
		for i := 0; i < n; i++ {
			src := d.il[(d.idx+MAP[i%16])%16]
			if i < len(src) {
				y[i] = src[i]
			}
		}
	}

	d.il[d.idx] = append([]int8{}, x...)
	d.idx = (d.idx + 1) % 16
	if d.warmed < 16 {
		d.warmed++
	}

	return y
}

// Warmed reports whether the deinterleaver has received the 16 CIFs
// required before it produces output.
func (d *Deinterleaver) Warmed() bool {
	return d.warmed >= 16
}
