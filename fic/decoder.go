/*
NAME
  decoder.go

DESCRIPTION
  decoder.go turns one FIC codeword's worth of punctured soft bits into
  CRC-gated FIB payload bytes: depuncture to the rate-1/4 mother code,
  Viterbi-decode, then undo the 9-stage PRBS energy dispersal (spec §4.6),
  leaving the 3 FIBs (96 bytes) of one codeword ready for SplitFIBs.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fic

import (
	"github.com/ausocean/dab/fec"
)

// CodewordPunctLen is the number of punctured soft bits per FIC codeword
// (spec §4.6).
const CodewordPunctLen = 2304

// CodewordInfoBits is the number of information bits recovered per FIC
// codeword: 768 bits = 96 bytes = 3 FIBs.
const CodewordInfoBits = 768

// FIBsPerCodeword is the number of 32-byte FIBs carried by one FIC
// codeword.
const FIBsPerCodeword = CodewordInfoBits / 8 / FIBLen

// DecodeCodeword depunctures, Viterbi-decodes and de-disperses one FIC
// codeword's punctured soft bits, returning the 96-byte FIB payload (still
// CRC-gated per FIB by the caller via SplitFIBs).
func DecodeCodeword(punctured []int8) []byte {
	mother := fec.FICDepuncture(punctured)
	bits := fec.ViterbiDecode(mother, CodewordInfoBits)
	descrambled := fec.Disperse(bits)
	return bitsToBytes(descrambled)
}

// bitsToBytes packs a slice of 0/1 bytes, MSB-first, into a byte slice.
func bitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
