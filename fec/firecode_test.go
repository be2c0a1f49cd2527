package fec

import (
	"math/rand"
	"testing"
)

func TestFirecodeValidHeadAlwaysPasses(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	for trial := 0; trial < 50; trial++ {
		payload := make([]byte, 9)
		rnd.Read(payload)
		block := AppendFirecode(payload)
		if !CheckFirecode(block) {
			t.Fatalf("trial %d: constructed valid firecode head failed check", trial)
		}
	}
}

func TestFirecodeRandomBlockRarelyPasses(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	const trials = 200000
	passes := 0
	for i := 0; i < trials; i++ {
		block := make([]byte, FirecodeBlockLen)
		rnd.Read(block)
		if CheckFirecode(block) {
			passes++
		}
	}
	// Expect roughly trials/65536 passes; allow generous slack since this
	// is a statistical property, not an exact count.
	maxExpected := trials/65536*10 + 20
	if passes > maxExpected {
		t.Fatalf("firecode passed on %d/%d random blocks, expected roughly %d", passes, trials, trials/65536)
	}
}
