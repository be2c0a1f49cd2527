package fec

import (
	"math/rand"
	"testing"
)

func TestCRC16RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rnd.Intn(64)
		data := make([]byte, n)
		rnd.Read(data)

		framed := AppendCRC16(data)
		if !CheckCRC16(framed) {
			t.Fatalf("trial %d: expected CRC to check out for %x", trial, data)
		}

		// Flip a single bit anywhere in the frame and expect rejection.
		bitPos := rnd.Intn(len(framed) * 8)
		flipped := append([]byte{}, framed...)
		flipped[bitPos/8] ^= 1 << uint(bitPos%8)
		if CheckCRC16(flipped) {
			t.Fatalf("trial %d: expected CRC to reject single bit flip at bit %d", trial, bitPos)
		}
	}
}

func TestCRC16Deterministic(t *testing.T) {
	a := CRC16CCITT([]byte("DAB"))
	b := CRC16CCITT([]byte("DAB"))
	if a != b {
		t.Fatalf("CRC16CCITT not deterministic: %x vs %x", a, b)
	}
}
