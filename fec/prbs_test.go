package fec

import (
	"math/rand"
	"testing"
)

func TestDisperseInvolution(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	v := make([]byte, 3072)
	for i := range v {
		v[i] = byte(rnd.Intn(2))
	}

	once := Disperse(v)
	twice := Disperse(once)

	for i := range v {
		if twice[i] != v[i] {
			t.Fatalf("disperse not involutive at bit %d: got %d want %d", i, twice[i], v[i])
		}
	}
}
