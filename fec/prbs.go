/*
NAME
  prbs.go

DESCRIPTION
  prbs.go implements the 9-stage PRBS (x^9 + x^5 + 1) used for energy
  dispersal scrambling of both FIC bit groups and MSC CIFs. The register is
  re-seeded to all-ones at the start of every dispersal run, per EN 300 401.

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

// PRBS9 generates the x^9+x^5+1 pseudo-random bit sequence used for energy
// dispersal. The register holds the previous 9 output bits, oldest first.
type PRBS9 struct {
	reg [9]byte
}

// NewPRBS9 returns a PRBS9 seeded with all-ones, as required at the start
// of every FIB group or CIF.
func NewPRBS9() *PRBS9 {
	p := &PRBS9{}
	for i := range p.reg {
		p.reg[i] = 1
	}
	return p
}

// Next returns the next bit of the sequence and advances the register.
func (p *PRBS9) Next() byte {
	out := p.reg[0] ^ p.reg[4]
	copy(p.reg[0:8], p.reg[1:9])
	p.reg[8] = out
	return out
}

// Disperse XORs bits (one bit per byte, 0 or 1) against a freshly-seeded
// PRBS9 sequence and returns the result. Disperse is its own inverse: per
// invariant P1, dispersing a vector twice returns the original vector.
func Disperse(bits []byte) []byte {
	p := NewPRBS9()
	out := make([]byte, len(bits))
	for i, b := range bits {
		out[i] = b ^ p.Next()
	}
	return out
}
