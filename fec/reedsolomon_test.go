package fec

import (
	"math/rand"
	"testing"
)

func TestRSEncodeDecodeNoErrors(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	data := make([]byte, RSK)
	rnd.Read(data)

	cw, err := RSEncode(data)
	if err != nil {
		t.Fatal(err)
	}
	got, n, err := RSDecode(cw)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 corrections, got %d", n)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d mismatch: got %x want %x", i, got[i], data[i])
		}
	}
}

func TestRSCorrectsUpToMaxErrors(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for trial := 0; trial < 20; trial++ {
		data := make([]byte, RSK)
		rnd.Read(data)

		cw, err := RSEncode(data)
		if err != nil {
			t.Fatal(err)
		}

		corrupted := append([]byte{}, cw...)
		positions := rnd.Perm(RSN)[:RSMaxErrors]
		for _, p := range positions {
			var b byte
			for b == 0 {
				b = byte(rnd.Intn(256))
			}
			corrupted[p] ^= b
		}

		got, n, err := RSDecode(corrupted)
		if err != nil {
			t.Fatalf("trial %d: expected correction, got error: %v", trial, err)
		}
		if n != RSMaxErrors {
			t.Fatalf("trial %d: expected %d corrections, got %d", trial, RSMaxErrors, n)
		}
		for i := range data {
			if got[i] != data[i] {
				t.Fatalf("trial %d: byte %d mismatch after correction", trial, i)
			}
		}
	}
}
