package mp4

import (
	"testing"

	"github.com/ausocean/dab/fec"
)

func TestProcessorSyncsOnFirecodeValidHead(t *testing.T) {
	const bitRateKbps = 8
	var aus [][]byte
	p := NewProcessor(bitRateKbps, func(env []byte) { aus = append(aus, env) })

	frameLen := p.frameBytes()
	total := frameLen * SuperFrameFrames

	sf := make([]byte, total)
	payload9 := make([]byte, 9)
	head := fec.AppendFirecode(payload9)
	copy(sf, head)

	for i := 0; i < SuperFrameFrames; i++ {
		p.AddFrame(sf[i*frameLen : (i+1)*frameLen])
	}

	if p.sync != 4 {
		t.Fatalf("expected sync=4 after a valid Firecode head, got %d", p.sync)
	}
}

func TestProcessorDegradesSyncOnBadHead(t *testing.T) {
	const bitRateKbps = 8
	p := NewProcessor(bitRateKbps, nil)
	frameLen := p.frameBytes()

	junk := make([]byte, frameLen)
	for i := range junk {
		junk[i] = 0xAA
	}
	for i := 0; i < SuperFrameFrames; i++ {
		p.AddFrame(junk)
	}
	if p.sync != 0 {
		t.Fatalf("expected sync to stay at 0 on repeated bad heads, got %d", p.sync)
	}
	if f, _, _ := p.ErrorCounts(); f == 0 {
		t.Fatal("expected frame error counter to increment")
	}
}

func TestWrapLOASHasSyncword(t *testing.T) {
	env := wrapLOAS([]byte{1, 2, 3}, true, 1)
	hdr := uint32(env[0])<<16 | uint32(env[1])<<8 | uint32(env[2])
	sync := hdr >> 13
	if sync != loasSyncword {
		t.Fatalf("expected syncword 0x%x, got 0x%x", loasSyncword, sync)
	}
}
