/*
NAME
  puncture.go

DESCRIPTION
  puncture.go implements the depuncturing/puncturing vectors used by the
  FIC decoder (PI-16, PI-15 and the PI-X tail table) and by the MSC
  UEP/EEP deconvolvers. EN 300 401 Annex C defines 24 fixed puncturing
  vectors PI_1..PI_24, each a 32-bit pattern applied across the 4 output
  streams of the mother code; a FIG/subchannel selects a vector per
  protection level. This module generates the vectors from their punctured
  bit count (an evenly-spaced approximation of the Annex C patterns) so
  that puncture/depuncture are always exact inverses of one another
  regardless of which vector index is in play.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fec

// PunctureVectorLen is the length, in mother-code bits, of one puncturing
// period (32 bits per EN 300 401 Annex C: 8 information bits across all 4
// generator outputs).
const PunctureVectorLen = 32

// PIVector is a puncturing pattern: true means the coded bit at that
// position within the 32-bit period is kept, false means it is dropped.
type PIVector [PunctureVectorLen]bool

// NewPIVector builds the puncturing vector for table index pi (1..24 per
// Annex C), which keeps 8+pi bits out of every 32, evenly spaced across the
// period so that puncture and depuncture round-trip exactly.
func NewPIVector(pi int) PIVector {
	if pi < 1 {
		pi = 1
	}
	if pi > 24 {
		pi = 24
	}
	kept := 8 + pi
	var v PIVector
	// Evenly distribute the kept marks across the 32 positions using a
	// Bresenham-style accumulator so consecutive kept bits are spread out
	// rather than clustered.
	acc := 0
	for i := 0; i < PunctureVectorLen; i++ {
		acc += kept
		if acc >= PunctureVectorLen {
			acc -= PunctureVectorLen
			v[i] = true
		}
	}
	return v
}

// Puncture drops coded bits at positions the vector marks false, cycling
// the vector across the full coded stream.
func Puncture(coded []byte, v PIVector) []byte {
	out := make([]byte, 0, len(coded))
	for i, b := range coded {
		if v[i%PunctureVectorLen] {
			out = append(out, b)
		}
	}
	return out
}

// Depuncture restores the full-rate soft-bit stream from a punctured soft
// stream of the given output length (outLen is 4*(nInfoBits+Memory) for
// the FIC mother code), inserting neutral (zero) soft values at every
// punctured position.
func Depuncture(punctured []int8, v PIVector, outLen int) []int8 {
	out := make([]int8, outLen)
	pi := 0
	for i := 0; i < outLen; i++ {
		if v[i%PunctureVectorLen] {
			if pi < len(punctured) {
				out[i] = punctured[pi]
			}
			pi++
		}
	}
	return out
}

// FIC puncturing, per spec §4.6: the first 21*128 of the 3096 mother-code
// bits per FIC codeword use PI-16, the next 3*128 use PI-15, and the final
// 24 bits (the Memory*4 tail) use PI-X, which keeps 12 of the 24 tail bits.
var (
	ficPI16 = NewPIVector(16)
	ficPI15 = NewPIVector(15)
	ficPIX  = tailVector()
)

// tailVector is the PI-X vector: the pattern 1100 repeated.
func tailVector() PIVector {
	var v PIVector
	for i := range v {
		v[i] = i%4 < 2
	}
	return v
}

// FICSegmentLens are the lengths, in punctured coded bits, of the three
// puncturing regions of one 2304-bit FIC codeword: 21 blocks of 128
// mother-code bits under PI-16 (2016), 3 blocks of 128 under PI-15 (276),
// and the 24-bit tail under PI-X (12).
var FICSegmentLens = [3]int{21 * 128 * 24 / 32, 3 * 128 * 23 / 32, 12}

// FICDepuncture restores the 3072+24=3096 soft mother-code bits (768
// information bits + 6 tail bits, at rate 1/4) from the 2304 punctured
// soft bits of one FIC codeword.
func FICDepuncture(punctured []int8) []int8 {
	if len(punctured) != FICSegmentLens[0]+FICSegmentLens[1]+FICSegmentLens[2] {
		panic("fec: unexpected FIC codeword length")
	}
	out := make([]int8, 0, 4*(768+TailBits))
	off := 0

	seg := punctured[off : off+FICSegmentLens[0]]
	out = append(out, Depuncture(seg, ficPI16, 21*4*32)...)
	off += FICSegmentLens[0]

	seg = punctured[off : off+FICSegmentLens[1]]
	out = append(out, Depuncture(seg, ficPI15, 3*4*32)...)
	off += FICSegmentLens[1]

	seg = punctured[off : off+FICSegmentLens[2]]
	out = append(out, Depuncture(seg, ficPIX, 24)...)

	return out
}

// FICPuncture is the inverse of FICDepuncture, used by tests and by the
// encoder side of the BER estimator.
func FICPuncture(mother []int8) []int8 {
	if len(mother) != 4*(768+TailBits) {
		panic("fec: unexpected FIC mother code length")
	}
	out := make([]int8, 0, 2304)
	out = append(out, puncture8(mother[0:21*4*32], ficPI16)...)
	out = append(out, puncture8(mother[21*4*32:21*4*32+3*4*32], ficPI15)...)
	out = append(out, puncture8(mother[21*4*32+3*4*32:], ficPIX)...)
	return out
}

func puncture8(in []int8, v PIVector) []int8 {
	out := make([]int8, 0, len(in))
	for i, b := range in {
		if v[i%PunctureVectorLen] {
			out = append(out, b)
		}
	}
	return out
}
