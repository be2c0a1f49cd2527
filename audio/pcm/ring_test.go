package pcm

import (
	"testing"

	cpcm "github.com/ausocean/dab/codec/pcm"
)

func TestRingFlushesAtThreshold(t *testing.T) {
	var flushed bool
	var gotRate uint
	r := NewRing(48000, func(buf cpcm.Buffer, flags int) {
		flushed = true
		gotRate = buf.Format.Rate
	})
	n := r.thresholdBytes() / 2 // int16 samples needed
	samples := make([]int16, n)
	r.PushInt16(samples, 0)
	if !flushed {
		t.Fatal("expected ring to flush once threshold reached")
	}
	if gotRate != 48000 {
		t.Fatalf("expected rate 48000, got %d", gotRate)
	}
}
