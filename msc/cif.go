/*
NAME
  cif.go

DESCRIPTION
  cif.go implements the CIF (Common Interleaved Frame) accumulator: 18
  MSC OFDM symbol blocks of 2*1536 soft bits each are written at their
  block offset as they arrive from the OFDM demodulator, filling one
  55296-soft-bit CIF; once complete it is handed to every registered
  Backend's subchannel slice, per spec §4.8.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package msc

// CIFBits is the number of soft bits in one Common Interleaved Frame.
const CIFBits = 55296

// CUBits is the number of bits in one Capacity Unit.
const CUBits = 64

// BlockBits is the number of soft bits carried by one MSC OFDM symbol
// (2 bits per active carrier).
const BlockBits = 2 * 1536

// BlocksPerCIF is the number of OFDM symbol blocks making up one CIF.
const BlocksPerCIF = CIFBits / BlockBits // 18

// Accumulator assembles one CIF at a time from incoming MSC OFDM symbol
// blocks, per spec §4.8's offset formula.
type Accumulator struct {
	buf   [CIFBits]int8
	count int // blocks written since the last complete CIF
}

// NewAccumulator returns an empty CIF Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// WriteBlock writes one MSC symbol's soft bits at its position within the
// current CIF (idx is the OFDM symbol index within the transmission
// frame, counted as in spec §4.8: MSC symbols start at index 4). It
// returns the completed CIF (a fresh copy) and true once the 18th block
// of a CIF has been written.
func (a *Accumulator) WriteBlock(idx int, bits []int8) (cif []int8, complete bool) {
	slot := ((idx - 4) % BlocksPerCIF + BlocksPerCIF) % BlocksPerCIF
	off := slot * BlockBits
	n := len(bits)
	if n > BlockBits {
		n = BlockBits
	}
	copy(a.buf[off:off+n], bits[:n])
	a.count++

	if a.count < BlocksPerCIF {
		return nil, false
	}
	a.count = 0
	out := make([]int8, CIFBits)
	copy(out, a.buf[:])
	return out, true
}
